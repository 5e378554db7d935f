package model

import "github.com/rs/zerolog"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// ModelState is a point-in-time snapshot of an estimator, for debugging and logs.
type ModelState struct {
	Name        string `json:"name"`
	Fitted      bool   `json:"fitted"`
	NSamples    int    `json:"n_samples,omitempty"`
	NFeatures   int    `json:"n_features,omitempty"`
	HasLabels   bool   `json:"has_labels"`
	YRequired   bool   `json:"y_required"`
	FitRequired bool   `json:"fit_required"`
}

// MarshalZerologObject lets a ModelState be logged as a nested object.
func (s ModelState) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.Name).
		Bool("fitted", s.Fitted).
		Int("n_samples", s.NSamples).
		Int("n_features", s.NFeatures).
		Bool("has_labels", s.HasLabels).
		Bool("y_required", s.YRequired).
		Bool("fit_required", s.FitRequired)
}
