package dummy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/estimator/core/model"
	"github.com/YuminosukeSato/estimator/pkg/errors"
)

var _ model.Estimator = (*ConstantPredictor)(nil)

func TestConstantPredictor_PredictWithoutFit(t *testing.T) {
	c := NewConstantPredictor(4.5)
	assert.False(t, c.IsFitted())

	pred, err := c.Predict([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	r, cols := pred.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, cols)
	for i := 0; i < r; i++ {
		assert.Equal(t, 4.5, pred.At(i, 0))
	}
	assert.False(t, c.IsFitted())
}

func TestConstantPredictor_PredictNil(t *testing.T) {
	c := NewConstantPredictor(-1)

	pred, err := c.Predict(nil)
	require.NoError(t, err)
	r, _ := pred.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, -1.0, pred.At(0, 0))
}

func TestConstantPredictor_FitWithLabels(t *testing.T) {
	c := NewConstantPredictor(0)

	got, err := c.Fit([][]float64{{1}, {2}, {3}, {4}}, []int{1, 2, 3, 6})
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.True(t, c.IsFitted())
	assert.Equal(t, 3.0, c.Constant())

	pred, err := c.Predict([]float64{9, 9})
	require.NoError(t, err)
	assert.Equal(t, 3.0, pred.At(0, 0))
}

func TestConstantPredictor_FitWithoutLabels(t *testing.T) {
	c := NewConstantPredictor(7)

	_, err := c.Fit([][]float64{{1}, {2}}, nil)
	require.NoError(t, err)
	assert.True(t, c.IsFitted())
	assert.Nil(t, c.Target())
	assert.Equal(t, 7.0, c.Constant())
}

func TestConstantPredictor_Errors(t *testing.T) {
	t.Run("empty X", func(t *testing.T) {
		c := NewConstantPredictor(1)
		_, err := c.Fit([]float64{}, []float64{1})
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		assert.False(t, c.IsFitted())
	})

	t.Run("non finite labels", func(t *testing.T) {
		c := NewConstantPredictor(1)
		_, err := c.Fit([][]float64{{1}, {2}}, []float64{1, math.NaN()})
		var numErr *errors.NumericalInstabilityError
		require.True(t, errors.As(err, &numErr))
		assert.Equal(t, 1.0, c.Constant())
		assert.False(t, c.IsFitted())
	})

	t.Run("uncoercible X in predict", func(t *testing.T) {
		c := NewConstantPredictor(1)
		_, err := c.Predict([]string{"a"})
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestConstantPredictor_Config(t *testing.T) {
	c := NewConstantPredictor(0)
	cfg := c.Config()
	assert.False(t, cfg.YRequired)
	assert.False(t, cfg.FitRequired)

	// オプションで上書きできる
	strict := NewConstantPredictor(0, model.WithFitRequired(true))
	_, err := strict.Predict([][]float64{{1}})
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
}
