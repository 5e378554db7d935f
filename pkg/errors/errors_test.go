package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	crerrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		wantMsg string
	}{
		{
			name:    "input error",
			err:     NewInputError("SetupInput", "X", "ragged nested sequence"),
			kind:    ErrInvalidInput,
			wantMsg: "estimator: SetupInput: invalid X: ragged nested sequence",
		},
		{
			name:    "empty input",
			err:     NewEmptyInputError("SetupInput", "y"),
			kind:    ErrInvalidInput,
			wantMsg: "estimator: SetupInput: invalid y: y is empty",
		},
		{
			name:    "missing argument",
			err:     NewMissingArgumentError("SetupInput", "y"),
			kind:    ErrMissingArgument,
			wantMsg: "estimator: SetupInput: missing required argument y",
		},
		{
			name:    "not fitted",
			err:     NewNotFittedError("LinearRegression", "Predict"),
			kind:    ErrInvalidState,
			wantMsg: "estimator: LinearRegression: this model is not fitted yet. Call Fit() before using Predict()",
		},
		{
			name:    "not implemented",
			err:     NewNotImplementedError("BaseEstimator", "PredictArray"),
			kind:    ErrNotImplemented,
			wantMsg: "estimator: BaseEstimator: PredictArray is not implemented",
		},
		{
			name:    "dimension mismatch",
			err:     NewDimensionError("Predict", 3, 2, 1),
			kind:    ErrInvalidInput,
			wantMsg: "estimator: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, Is(tt.err, tt.kind))

			// 種別はラップ後も保持される
			wrapped := Wrap(tt.err, "outer")
			assert.True(t, Is(wrapped, tt.kind))

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go")
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := NewMissingArgumentError("Fit", "y")
	assert.False(t, Is(err, ErrInvalidInput))
	assert.False(t, Is(err, ErrInvalidState))
	assert.False(t, Is(err, ErrNotImplemented))
}

func TestStructuredErrorsAreCastable(t *testing.T) {
	var inputErr *InputError
	require.True(t, As(NewInputError("Fit", "X", "bad"), &inputErr))
	assert.Equal(t, "X", inputErr.Param)

	var missing *MissingArgumentError
	require.True(t, As(NewMissingArgumentError("Fit", "y"), &missing))
	assert.Equal(t, "y", missing.Param)

	var notFitted *NotFittedError
	require.True(t, As(NewNotFittedError("KMeans", "Predict"), &notFitted))
	assert.Equal(t, "KMeans", notFitted.ModelName)

	var dimErr *DimensionError
	require.True(t, As(NewDimensionError("Predict", 2, 3, 1), &dimErr))
	assert.Equal(t, 3, dimErr.Got)
}

func TestNewModelError(t *testing.T) {
	err := NewModelError("LinearRegression.Fit", "singular matrix", ErrSingularMatrix)
	assert.Equal(t, "estimator: LinearRegression.Fit: singular matrix: singular matrix", err.Error())
	assert.True(t, Is(err, ErrSingularMatrix))

	err = NewModelError("Predict", "not fitted", nil)
	assert.Equal(t, "estimator: Predict: not fitted", err.Error())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("n_clusters", "must be positive", 0)
	assert.Equal(t, "estimator: validation failed for parameter 'n_clusters': must be positive (got: 0)", err.Error())

	var valErr *ValidationError
	require.True(t, As(err, &valErr))
	assert.Equal(t, 0, valErr.Value)
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("coef", []float64{1, 2, 3}))

	nan := math.NaN()
	err := CheckNumericalStability("coef", []float64{1, nan})
	require.Error(t, err)

	var numErr *NumericalInstabilityError
	require.True(t, As(err, &numErr))
	assert.Equal(t, "coef", numErr.Operation)

	assert.Error(t, CheckScalar("intercept", nan))
}

func TestWarnRouting(t *testing.T) {
	var got []error
	prev := warningHandler
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(prev)

	Warn(NewConvergenceWarning("KMeans", 300, ""))
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].Error(), "KMeans failed to converge after 300 iterations"))

	// zerologが設定されていれば優先される
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	SetZerologWarnFunc(func(w error) {
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			logger.Warn().EmbedObject(m).Msg(w.Error())
			return
		}
		logger.Warn().Msg(w.Error())
	})
	defer SetZerologWarnFunc(nil)

	Warn(NewDataConversionWarning("bool", "float64", "boolean input"))
	assert.Len(t, got, 1)
	assert.Contains(t, buf.String(), `"type":"DataConversionWarning"`)
	assert.Contains(t, buf.String(), `"from_type":"bool"`)
}

func TestRecover(t *testing.T) {
	t.Run("panic becomes PanicError", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "Predict")
			panic("index out of range")
		}
		err := fn()
		require.Error(t, err)

		var panicErr *PanicError
		require.True(t, As(err, &panicErr))
		assert.Equal(t, "Predict", panicErr.Operation)
		assert.Equal(t, "panic in Predict: index out of range", panicErr.Error())
		assert.NotEmpty(t, panicErr.StackTrace)
		assert.Contains(t, panicErr.String(), "Stack trace:")
	})

	t.Run("no panic", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "Predict")
			return nil
		}
		assert.NoError(t, fn())
	})

	t.Run("existing error is kept", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "Predict")
			err = ErrNotImplemented
			panic("late")
		}
		err := fn()
		require.Error(t, err)
		assert.True(t, Is(err, ErrNotImplemented))
		assert.Contains(t, err.Error(), "panic in Predict: late")
	})
}

func TestSafeExecute(t *testing.T) {
	assert.NoError(t, SafeExecute("op", func() error { return nil }))

	sentinel := crerrors.New("boom")
	assert.Equal(t, sentinel, SafeExecute("op", func() error { return sentinel }))

	err := SafeExecute("op", func() error { panic(42) })
	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, 42, panicErr.PanicValue)
}
