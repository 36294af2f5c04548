// Package datefeature derives calendar attributes from textual transaction dates.
package datefeature

import (
	"time"

	"card-spendings/internal/domain"
)

// DefaultLayout is the day-month-year layout of the dataset, e.g. "2-10-2014".
const DefaultLayout = "2-1-2006"

// Extractor parses dates with a single layout fixed at construction.
// It holds no other state and is safe to reuse across a whole record set.
type Extractor struct {
	layout string
}

// New creates an extractor for the given layout. An empty layout selects DefaultLayout.
func New(layout string) Extractor {
	if layout == "" {
		layout = DefaultLayout
	}
	return Extractor{layout: layout}
}

// Layout returns the configured date layout.
func (e Extractor) Layout() string {
	return e.layout
}

// Parse converts raw into a calendar date. Impossible days such as
// 31 April are rejected by the parser.
func (e Extractor) Parse(raw string) (time.Time, error) {
	t, err := time.Parse(e.layout, raw)
	if err != nil {
		return time.Time{}, &domain.ParseError{Value: raw, Layout: e.layout, Err: err}
	}
	return t, nil
}

func (e Extractor) Year(raw string) (int, error) {
	t, err := e.Parse(raw)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// MonthName returns the full English month name.
func (e Extractor) MonthName(raw string) (string, error) {
	t, err := e.Parse(raw)
	if err != nil {
		return "", err
	}
	return t.Month().String(), nil
}

func (e Extractor) DayNumber(raw string) (int, error) {
	t, err := e.Parse(raw)
	if err != nil {
		return 0, err
	}
	return t.Day(), nil
}

// DayName returns the full English weekday name of the calendar date.
func (e Extractor) DayName(raw string) (string, error) {
	t, err := e.Parse(raw)
	if err != nil {
		return "", err
	}
	return t.Weekday().String(), nil
}

// Features parses raw once and derives all four attributes.
func (e Extractor) Features(raw string) (domain.DateFeatures, error) {
	t, err := e.Parse(raw)
	if err != nil {
		return domain.DateFeatures{}, err
	}
	return featuresOf(t), nil
}

// Apply returns a copy of records with the calendar features attached.
// The input slice is left untouched. It stops at the first record whose
// date cannot be parsed and reports that record's index.
func (e Extractor) Apply(records []domain.Transaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, len(records))
	for i, rec := range records {
		features, err := e.Features(rec.Date)
		if err != nil {
			if pe, ok := err.(*domain.ParseError); ok {
				pe.Index = rec.Index
			}
			return nil, err
		}
		rec.Calendar = features
		out[i] = rec
	}
	return out, nil
}

func featuresOf(t time.Time) domain.DateFeatures {
	return domain.DateFeatures{
		Year:      t.Year(),
		Month:     t.Month().String(),
		DayNumber: t.Day(),
		DayName:   t.Weekday().String(),
	}
}
