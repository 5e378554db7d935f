// Package dummy provides baseline estimators that ignore the features.
package dummy

import (
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/estimator/core/model"
	"github.com/YuminosukeSato/estimator/core/ndarray"
	"github.com/YuminosukeSato/estimator/pkg/errors"
	"github.com/YuminosukeSato/estimator/pkg/log"
)

// ConstantPredictor predicts the same value for every sample.
//
// It needs neither labels nor a prior Fit. Predict with no X returns a single
// prediction. Fitting with labels replaces the constant with the label mean.
type ConstantPredictor struct {
	*model.BaseEstimator

	mu       sync.RWMutex
	constant float64
}

// NewConstantPredictor returns a predictor that outputs constant until fitted with labels.
func NewConstantPredictor(constant float64, opts ...model.Option) *ConstantPredictor {
	c := &ConstantPredictor{constant: constant}
	opts = append([]model.Option{model.WithConfig(model.Config{YRequired: false, FitRequired: false})}, opts...)
	c.BaseEstimator = model.NewBaseEstimator("ConstantPredictor", c, opts...)
	return c
}

// Fit stores X and, when y is given, sets the constant to the mean of y.
func (c *ConstantPredictor) Fit(X, y any) (*ConstantPredictor, error) {
	const op = "ConstantPredictor.Fit"

	if _, err := c.BaseEstimator.Fit(X, y); err != nil {
		return nil, err
	}
	ya := c.Target()
	if ya == nil || ya.Size() == 0 {
		return c, nil
	}

	mean := stat.Mean(ya.Data(), nil)
	if err := errors.CheckScalar(op, mean); err != nil {
		c.Reset()
		return nil, err
	}

	c.mu.Lock()
	c.constant = mean
	c.mu.Unlock()

	c.Logger().Debug("constant updated", log.OperationKey, log.OperationFit, "constant", mean)
	return c, nil
}

// PredictArray returns an n×1 matrix filled with the constant.
func (c *ConstantPredictor) PredictArray(X *ndarray.Array) (mat.Matrix, error) {
	n := 1
	if X != nil && X.Rows() > 0 {
		n = X.Rows()
	}

	v := c.Constant()
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(n, 1, data), nil
}

// Constant returns the value currently predicted.
func (c *ConstantPredictor) Constant() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.constant
}
