package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/pkg/errors"
)

func vec(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr error
	}{
		{name: "perfect prediction", yTrue: vec(1, 2, 3, 4, 5), yPred: vec(1, 2, 3, 4, 5), want: 0},
		// ((0.5)^2 * 4) / 4
		{name: "simple case", yTrue: vec(1, 2, 3, 4), yPred: vec(1.5, 2.5, 2.5, 3.5), want: 0.25},
		// (4 + 4 + 9) / 3
		{name: "larger errors", yTrue: vec(10, 20, 30), yPred: vec(12, 18, 33), want: 17.0 / 3.0},
		{name: "dimension mismatch", yTrue: vec(1, 2, 3), yPred: vec(1, 2), wantErr: errors.ErrInvalidInput},
		{name: "empty vectors", yTrue: &mat.VecDense{}, yPred: &mat.VecDense{}, wantErr: errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestMSEMatrix(t *testing.T) {
	t.Run("single column", func(t *testing.T) {
		got, err := MSEMatrix(
			mat.NewDense(3, 1, []float64{1, 2, 3}),
			mat.NewDense(3, 1, []float64{1, 2, 5}),
		)
		require.NoError(t, err)
		assert.InDelta(t, 4.0/3.0, got, 1e-10)
	})

	t.Run("multiple columns", func(t *testing.T) {
		_, err := MSEMatrix(
			mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("row mismatch", func(t *testing.T) {
		_, err := MSEMatrix(mat.NewDense(3, 1, nil), mat.NewDense(2, 1, nil))
		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 3, dimErr.Expected)
		assert.Equal(t, 2, dimErr.Got)
	})
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(vec(10, 20, 30), vec(12, 18, 33))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(17.0/3.0), got, 1e-10)

	_, err = RMSE(vec(1, 2, 3), vec(1))
	assert.Error(t, err)
}

func TestMAE(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		want  float64
	}{
		{name: "perfect prediction", yTrue: vec(1, 2, 3), yPred: vec(1, 2, 3), want: 0},
		{name: "simple case", yTrue: vec(1, 2, 3, 4), yPred: vec(2, 2, 3, 6), want: 0.75},
		{name: "with negative differences", yTrue: vec(5, 5), yPred: vec(3, 8), want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MAE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}

	_, err := MAE(vec(1, 2), vec(1, 2, 3))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{name: "perfect prediction", yTrue: vec(1, 2, 3, 4), yPred: vec(1, 2, 3, 4), want: 1},
		{name: "mean baseline", yTrue: vec(1, 2, 3), yPred: vec(2, 2, 2), want: 0},
		// RSS = 8, TSS = 2
		{name: "worse than mean baseline", yTrue: vec(1, 2, 3), yPred: vec(3, 2, 1), want: -3},
		{name: "no variance in yTrue", yTrue: vec(2, 2, 2), yPred: vec(1, 2, 3), wantErr: true},
		{name: "dimension mismatch", yTrue: vec(1, 2, 3), yPred: vec(1, 2), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestR2ScoreMatrix(t *testing.T) {
	got, err := R2ScoreMatrix(
		mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
		mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}
