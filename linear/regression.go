// Package linear は線形モデルを提供する
package linear

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/core/model"
	"github.com/YuminosukeSato/estimator/core/ndarray"
	"github.com/YuminosukeSato/estimator/core/parallel"
	"github.com/YuminosukeSato/estimator/metrics"
	"github.com/YuminosukeSato/estimator/pkg/errors"
	"github.com/YuminosukeSato/estimator/pkg/log"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LinearRegression は最小二乗法による線形回帰モデル
//
// ラベル y は必須で、Predict の前に Fit が必要（デフォルト設定）。
type LinearRegression struct {
	*model.BaseEstimator

	fitIntercept bool
	baseOpts     []model.Option

	mu        sync.RWMutex
	coef      []float64 // 重み（係数）
	intercept float64   // 切片
	nFeatures int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	lr.BaseEstimator = model.NewBaseEstimator("LinearRegression", lr, lr.baseOpts...)
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用
//
// y の要素数はサンプル数と一致しなければならない。学習に失敗した場合、
// モデルは未学習状態に戻る。
func (lr *LinearRegression) Fit(X, y any) (*LinearRegression, error) {
	const op = "LinearRegression.Fit"

	if _, err := lr.BaseEstimator.Fit(X, y); err != nil {
		return nil, err
	}

	ya := lr.Target()
	if ya == nil || ya.Size() == 0 {
		lr.Reset()
		return nil, errors.NewMissingArgumentError(op, "y")
	}
	Xm := lr.Input().Matrix()
	yv := ya.Vector()
	r, c := Xm.Dims()
	if yv.Len() != r {
		lr.Reset()
		return nil, errors.NewDimensionError(op, r, yv.Len(), 0)
	}

	weights, err := lr.solve(Xm, yv)
	if err != nil {
		lr.Reset()
		return nil, err
	}

	lr.mu.Lock()
	if lr.fitIntercept {
		lr.intercept = weights[0]
		lr.coef = weights[1:]
	} else {
		lr.intercept = 0
		lr.coef = weights
	}
	lr.nFeatures = c
	lr.mu.Unlock()

	lr.Logger().Info("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return lr, nil
}

func (lr *LinearRegression) solve(X *mat.Dense, y *mat.VecDense) ([]float64, error) {
	const op = "LinearRegression.Fit"
	r, c := X.Dims()

	design := X
	if lr.fitIntercept {
		// 切片項のために X に 1 の列を追加
		// X_with_intercept = [1, X]
		design = mat.NewDense(r, c+1, nil)
		parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				row := design.RawRowView(i)
				row[0] = 1.0
				copy(row[1:], X.RawRowView(i))
			}
		})
	}

	var XTX mat.Dense
	XTX.Mul(design.T(), design)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		lr.Logger().Warn("normal equation is singular", err, log.ErrorCodeKey, log.ErrorSingularMatrix)
		return nil, errors.NewModelError(op, "singular matrix", errors.ErrSingularMatrix)
	}

	var XTy mat.VecDense
	XTy.MulVec(design.T(), y)

	_, p := design.Dims()
	w := mat.NewVecDense(p, nil)
	w.MulVec(&XTXInv, &XTy)

	weights := mat.Col(nil, 0, w)
	if err := errors.CheckNumericalStability(op, weights); err != nil {
		return nil, err
	}
	return weights, nil
}

// PredictArray は y = X * weights + intercept を計算する
func (lr *LinearRegression) PredictArray(X *ndarray.Array) (mat.Matrix, error) {
	const op = "LinearRegression.Predict"
	if X == nil {
		return nil, errors.NewMissingArgumentError(op, "X")
	}

	lr.mu.RLock()
	coef, intercept, nFeatures := lr.coef, lr.intercept, lr.nFeatures
	lr.mu.RUnlock()
	if coef == nil {
		return nil, errors.NewNotFittedError(lr.Name(), "Predict")
	}

	Xm := X.Matrix()
	if Xm == nil {
		return nil, errors.NewEmptyInputError(op, "X")
	}
	r, c := Xm.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}

	var pred mat.VecDense
	pred.MulVec(Xm, mat.NewVecDense(c, coef))
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, pred.AtVec(i)+intercept)
	}
	return out, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y any) (float64, error) {
	const op = "LinearRegression.Score"
	if y == nil {
		return 0, errors.NewMissingArgumentError(op, "y")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	ya, err := ndarray.AsArray(y)
	if err != nil {
		return 0, errors.Wrapf(err, "%s: y", op)
	}
	if ya.Size() == 0 {
		return 0, errors.NewEmptyInputError(op, "y")
	}

	score, err := metrics.R2ScoreMatrix(mat.NewDense(ya.Size(), 1, ya.Data()), yPred)
	if err != nil {
		return 0, err
	}
	lr.Logger().Debug("scored", log.OperationKey, log.OperationScore, log.R2ScoreKey, score)
	return score, nil
}

// Coef は学習された重み（係数）のコピーを返す
func (lr *LinearRegression) Coef() []float64 {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	if lr.coef == nil {
		return nil
	}
	coef := make([]float64, len(lr.coef))
	copy(coef, lr.coef)
	return coef
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.intercept
}

// Reset はモデルを未学習状態に戻す
func (lr *LinearRegression) Reset() {
	lr.BaseEstimator.Reset()
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.coef = nil
	lr.intercept = 0
	lr.nFeatures = 0
}
