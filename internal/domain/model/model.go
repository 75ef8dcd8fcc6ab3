// Package model is the contract between the fused table and externally
// implemented learners: it selects training and inference rows and writes
// predictions back as a new column.
//
// Nothing in this module fits a model. External trainers enter here: they
// implement Trainer, call Fit on a stamped table from the service, and
// publish forecasts with Apply.
package model

import (
	"context"
	"fmt"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// Predictor maps one feature row to a prediction.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// ProbabilityPredictor is a classifier that also reports the probability
// of the positive class.
type ProbabilityPredictor interface {
	Predictor
	PredictProba(features []float64) (float64, error)
}

// Trainer fits a Predictor on a dataset.
type Trainer interface {
	Train(ctx context.Context, ds Dataset) (Predictor, error)
}

// Dataset is a dense feature matrix selected from a fused table.
// Y is empty for inference sets.
type Dataset struct {
	Features []string
	Label    string
	Dates    []calendar.Date
	X        [][]float64
	Y        []float64
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.X) }

// RowFilter restricts which rows a Spec trains on.
type RowFilter func(r fusion.Record) bool

// NotInRecession keeps rows whose in_recession label is known and zero.
func NotInRecession(r fusion.Record) bool {
	v, ok := r.Get(labels.InRecession).Get()
	return ok && v == 0
}

// Spec names the feature columns, the label column and an optional row
// filter for one model.
type Spec struct {
	Name        string
	Features    []string
	Label       string
	Filter      RowFilter
	Probability bool
}

func defaultFeatures() []string {
	return []string{
		"un_rate",
		"housing_climb_change",
		"36_mo_cpi_change_all",
		"yield_diff",
		"yield_below_zero",
		labels.YearsSinceRecession,
	}
}

// RecessionInNextYear is the classifier predicting whether a recession
// starts within a year.
func RecessionInNextYear() Spec {
	return Spec{
		Name:        "riny",
		Features:    defaultFeatures(),
		Label:       labels.RecessionInNextYear,
		Probability: true,
	}
}

// YearsUntilRecession is the regressor predicting the time to the next
// recession. It trains only on months outside a recession.
func YearsUntilRecession() Spec {
	return Spec{
		Name:     "yur",
		Features: defaultFeatures(),
		Label:    labels.YearsUntilRecession,
		Filter:   NotInRecession,
	}
}

func (s Spec) check(table *fusion.Table, withLabel bool) error {
	cols := s.Features
	if withLabel {
		cols = append(append([]string(nil), cols...), s.Label)
	}
	for _, c := range cols {
		if !table.HasColumn(c) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
	}
	return nil
}

func (s Spec) features(r fusion.Record) ([]float64, bool) {
	x := make([]float64, len(s.Features))
	for i, c := range s.Features {
		v, ok := r.Get(c).Get()
		if !ok {
			return nil, false
		}
		x[i] = v
	}
	return x, true
}

// TrainingSet selects rows whose label and features are all known and that
// pass the spec filter.
func TrainingSet(table *fusion.Table, spec Spec) (Dataset, error) {
	if err := spec.check(table, true); err != nil {
		return Dataset{}, err
	}
	ds := Dataset{Features: spec.Features, Label: spec.Label}
	for _, r := range table.Records() {
		y, ok := r.Get(spec.Label).Get()
		if !ok {
			continue
		}
		if spec.Filter != nil && !spec.Filter(r) {
			continue
		}
		x, ok := spec.features(r)
		if !ok {
			continue
		}
		ds.Dates = append(ds.Dates, r.Date)
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}
	if ds.Len() == 0 {
		return Dataset{}, fmt.Errorf("%w: training %s", ErrEmptyDataset, spec.Name)
	}
	return ds, nil
}

// InferenceSet selects the present rows: label still unknown, features known.
func InferenceSet(table *fusion.Table, spec Spec) (Dataset, error) {
	if err := spec.check(table, true); err != nil {
		return Dataset{}, err
	}
	ds := Dataset{Features: spec.Features, Label: spec.Label}
	for _, r := range table.Records() {
		if r.Get(spec.Label).IsKnown() {
			continue
		}
		x, ok := spec.features(r)
		if !ok {
			continue
		}
		ds.Dates = append(ds.Dates, r.Date)
		ds.X = append(ds.X, x)
	}
	if ds.Len() == 0 {
		return Dataset{}, fmt.Errorf("%w: inference %s", ErrEmptyDataset, spec.Name)
	}
	return ds, nil
}

// Fit trains a predictor on the spec's training set.
func Fit(ctx context.Context, trainer Trainer, table *fusion.Table, spec Spec) (Predictor, error) {
	ds, err := TrainingSet(table, spec)
	if err != nil {
		return nil, err
	}
	p, err := trainer.Train(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", spec.Name, err)
	}
	return p, nil
}

// Apply predicts every row whose features are known and returns a new table
// with the predictions in column. Rows with missing features get an
// unknown prediction. The input table is not modified.
func Apply(table *fusion.Table, p Predictor, spec Spec, column string) (*fusion.Table, error) {
	if err := spec.check(table, false); err != nil {
		return nil, err
	}
	predict := p.Predict
	if spec.Probability {
		pp, ok := p.(ProbabilityPredictor)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoProbability, spec.Name)
		}
		predict = pp.PredictProba
	}

	out := make([]types.Optional, table.Len())
	for i := 0; i < table.Len(); i++ {
		x, ok := spec.features(table.Row(i))
		if !ok {
			continue
		}
		y, err := predict(x)
		if err != nil {
			return nil, fmt.Errorf("predict %s at %s: %w", spec.Name, table.Row(i).Date, err)
		}
		out[i] = types.Known(y)
	}
	return table.WithColumn(column, out)
}
