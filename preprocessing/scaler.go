// Package preprocessing はデータの前処理を行う推定器を提供する
package preprocessing

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/estimator/core/model"
	"github.com/YuminosukeSato/estimator/core/ndarray"
	"github.com/YuminosukeSato/estimator/pkg/errors"
	"github.com/YuminosukeSato/estimator/pkg/log"
)

// StandardScaler はデータを平均0、標準偏差1に変換する
//
// ラベルは不要。予測は行わないため Predict は ErrNotImplemented を返す。
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
type StandardScaler struct {
	*model.BaseEstimator

	withMean bool // 平均を引くかどうか
	withStd  bool // 標準偏差で割るかどうか

	mu    sync.RWMutex
	mean  []float64 // 各特徴量の平均値
	scale []float64 // 各特徴量の標準偏差
}

// NewStandardScaler は新しいStandardScalerを作成する
func NewStandardScaler(withMean, withStd bool, opts ...model.Option) *StandardScaler {
	s := &StandardScaler{withMean: withMean, withStd: withStd}
	opts = append([]model.Option{model.WithYRequired(false)}, opts...)
	// PredictArray は定義しないので BaseEstimator の既定実装が使われる
	s.BaseEstimator = model.NewBaseEstimator("StandardScaler", nil, opts...)
	return s
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X any) (*StandardScaler, error) {
	if _, err := s.BaseEstimator.Fit(X, nil); err != nil {
		return nil, err
	}

	Xm := s.Input().Matrix()
	_, c := Xm.Dims()
	mean := make([]float64, c)
	scale := make([]float64, c)

	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, Xm)
		m := stat.Mean(col, nil)
		// 母分散
		variance := stat.MomentAbout(2, col, m, nil)

		if s.withMean {
			mean[j] = m
		}
		scale[j] = 1.0
		if s.withStd {
			// 標準偏差が0に近い場合は1のまま（ゼロ除算を避ける）
			if sd := math.Sqrt(variance); sd >= 1e-8 {
				scale[j] = sd
			}
		}
	}

	s.mu.Lock()
	s.mean = mean
	s.scale = scale
	s.mu.Unlock()

	s.Logger().Debug("scaler fitted", log.OperationKey, log.OperationFit, log.FeaturesKey, c)
	return s, nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X any) (mat.Matrix, error) {
	return s.apply("Transform", X, func(v, mean, scale float64) float64 {
		return (v - mean) / scale
	})
}

// FitTransform はFitとTransformを同時に実行する
func (s *StandardScaler) FitTransform(X any) (mat.Matrix, error) {
	if _, err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(s.Input())
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X any) (mat.Matrix, error) {
	return s.apply("InverseTransform", X, func(v, mean, scale float64) float64 {
		return v*scale + mean
	})
}

// Mean は各特徴量の平均値のコピーを返す
func (s *StandardScaler) Mean() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.mean...)
}

// Scale は各特徴量の標準偏差のコピーを返す
func (s *StandardScaler) Scale() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.scale...)
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.withMean, s.withStd, s.NFeatures())
}

func (s *StandardScaler) apply(method string, X any, f func(v, mean, scale float64) float64) (mat.Matrix, error) {
	op := "StandardScaler." + method
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError(s.Name(), method)
	}

	xa, err := ndarray.AsArray(X)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: X", op)
	}
	Xm := xa.Matrix()
	if Xm == nil {
		return nil, errors.NewEmptyInputError(op, "X")
	}

	s.mu.RLock()
	mean, scale := s.mean, s.scale
	s.mu.RUnlock()

	r, c := Xm.Dims()
	if c != len(mean) {
		return nil, errors.NewDimensionError(op, len(mean), c, 1)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return f(v, mean[j], scale[j])
	}, Xm)
	return out, nil
}
