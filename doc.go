// Package estimator is a small machine learning library for Go built around a
// shared estimator base.
//
// Every estimator embeds model.BaseEstimator, which normalises array-like
// input (nested slices of numbers, gonum matrices and vectors) into one
// numeric array, validates it, and enforces the fit-before-predict lifecycle.
// The concrete model only supplies its prediction routine.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/estimator/linear"
//	)
//
//	func main() {
//	    model, err := linear.NewLinearRegression().Fit(
//	        [][]float64{{1}, {2}, {3}, {4}},
//	        []float64{2, 4, 6, 8},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := model.Predict([][]float64{{5}, {6}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred.At(0, 0), pred.At(1, 0))
//	}
//
// # Packages
//
//   - core/model: BaseEstimator, configuration and the Predictor capability
//   - core/ndarray: the canonical numeric array and input coercion
//   - core/parallel: parallel processing utilities
//   - linear: LinearRegression
//   - cluster: KMeans
//   - dummy: ConstantPredictor
//   - preprocessing: StandardScaler
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R²)
//   - pkg/errors: error kinds, warnings and panic recovery
//   - pkg/log: structured logging on zerolog
//
// # Errors
//
// Errors carry a stack trace and a kind that can be tested with errors.Is:
//
//	_, err := model.Predict(X)
//	if errors.Is(err, errors.ErrInvalidState) {
//	    // Fit has not been called
//	}
//
// The kinds are ErrInvalidInput, ErrMissingArgument, ErrInvalidState and
// ErrNotImplemented, all in pkg/errors.
package estimator
