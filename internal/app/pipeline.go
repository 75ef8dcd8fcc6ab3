package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/recession"
	"github.com/okian/recessionwatch/internal/sources"
	"github.com/okian/recessionwatch/pkg/logger"
	"github.com/okian/recessionwatch/pkg/metrics"
)

// Defaults for the monthly calendar.
var (
	DefaultEpoch         = calendar.NewDate(1965, time.January)
	DefaultAnalysisStart = calendar.NewDate(1968, time.January)
)

// Runner produces a labeled table.
type Runner interface {
	Run(ctx context.Context) (*fusion.Table, error)
}

// Pipeline fetches every source, fuses the frames and stamps labels.
type Pipeline struct {
	adapters []sources.Adapter
	calendar *recession.Calendar
	epoch    calendar.Date
	start    calendar.Date
	now      func() time.Time
	logger   logger.Logger
}

// PipelineOption applies a configuration option to the Pipeline.
type PipelineOption func(*Pipeline)

// WithAdapters sets the source adapters.
func WithAdapters(adapters ...sources.Adapter) PipelineOption {
	return func(p *Pipeline) {
		p.adapters = append(p.adapters, adapters...)
	}
}

// WithRecessionCalendar replaces the default NBER calendar.
func WithRecessionCalendar(c *recession.Calendar) PipelineOption {
	return func(p *Pipeline) {
		if c != nil {
			p.calendar = c
		}
	}
}

// WithEpoch sets the first month of the calendar axis.
func WithEpoch(d calendar.Date) PipelineOption {
	return func(p *Pipeline) {
		if !d.IsZero() {
			p.epoch = d
		}
	}
}

// WithAnalysisStart sets the first month kept in the output.
func WithAnalysisStart(d calendar.Date) PipelineOption {
	return func(p *Pipeline) {
		if !d.IsZero() {
			p.start = d
		}
	}
}

// WithClock sets the source of "today" that ends the calendar axis.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline constructs a Pipeline. Without WithRecessionCalendar the
// default NBER table is used with the same clock as the pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		epoch:  DefaultEpoch,
		start:  DefaultAnalysisStart,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.calendar == nil {
		p.calendar = recession.Default(recession.WithClock(p.now))
	}
	return p
}

// Calendar returns the recession calendar used for labeling.
func (p *Pipeline) Calendar() *recession.Calendar { return p.calendar }

// Run builds every adapter concurrently, inner-joins required frames,
// left-joins optional ones and stamps the label columns. The first adapter
// failure cancels the others and fails the run.
func (p *Pipeline) Run(ctx context.Context) (*fusion.Table, error) {
	if len(p.adapters) == 0 {
		return nil, ErrNoAdapters
	}
	axis := calendar.Generate(p.epoch, calendar.FromTime(p.now()))
	if len(axis) == 0 {
		return nil, fmt.Errorf("%w: epoch %s is after today", ErrEmptyAxis, p.epoch)
	}
	if calendar.Index(axis, p.start) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStartOffAxis, p.start)
	}

	frames := make([]*fusion.Frame, len(p.adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range p.adapters {
		g.Go(func() error {
			f, err := a.Build(gctx, axis, p.start)
			if err != nil {
				return err
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var required, optional []*fusion.Frame
	for i, a := range p.adapters {
		if a.Required() {
			required = append(required, frames[i])
		} else {
			optional = append(optional, frames[i])
		}
	}

	fused, err := fusion.Fuse(required, optional)
	if err != nil {
		return nil, err
	}
	table, err := labels.Stamp(fused, p.calendar)
	if err != nil {
		return nil, err
	}

	metrics.UpdateFusedShape(table.Len(), len(table.Columns()))
	for name, n := range labels.Counts(table) {
		metrics.UpdateLabelUnknown(name, n)
	}
	first, _ := table.First()
	last, _ := table.Last()
	p.logger.Info(ctx, "table fused",
		logger.Int("rows", table.Len()),
		logger.Int("columns", len(table.Columns())),
		logger.String("first", first.String()),
		logger.String("last", last.String()),
	)
	return table, nil
}
