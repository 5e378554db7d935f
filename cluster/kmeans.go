// Package cluster はクラスタリング推定器を提供する
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/core/model"
	"github.com/YuminosukeSato/estimator/core/ndarray"
	"github.com/YuminosukeSato/estimator/core/parallel"
	"github.com/YuminosukeSato/estimator/pkg/errors"
	"github.com/YuminosukeSato/estimator/pkg/log"
)

// 割り当てを並列化する行数の閾値
const parallelThreshold = 1000

// KMeans は Lloyd 法による K-means クラスタリング
//
// ラベルは不要（YRequired=false）。Predict は各サンプルの最近傍クラスタの
// 番号を n×1 行列で返す。
type KMeans struct {
	*model.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数
	maxIter     int     // 最大イテレーション数
	tol         float64 // 中心の移動量がこれ以下なら収束
	randomState int64   // 乱数シード（負の場合は時刻から生成）

	baseOpts []model.Option

	// 学習パラメータ
	mu      sync.RWMutex
	centers [][]float64 // nClusters x nFeatures
	labels  []int
	inertia float64
	nIter   int
}

// Option は KMeans の設定オプション
type Option func(*KMeans)

// WithNClusters はクラスタ数を設定
func WithNClusters(n int) Option {
	return func(km *KMeans) {
		km.nClusters = n
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) Option {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) Option {
	return func(km *KMeans) {
		km.tol = tol
	}
}

// WithRandomState は乱数シードを設定。同じシードなら同じ結果になる
func WithRandomState(seed int64) Option {
	return func(km *KMeans) {
		km.randomState = seed
	}
}

// WithBaseOptions は埋め込まれた BaseEstimator の設定（ロガーなど）を渡す
func WithBaseOptions(opts ...model.Option) Option {
	return func(km *KMeans) {
		km.baseOpts = append(km.baseOpts, opts...)
	}
}

// NewKMeans は新しい KMeans を作成
func NewKMeans(opts ...Option) *KMeans {
	km := &KMeans{
		nClusters:   8,
		maxIter:     300,
		tol:         1e-4,
		randomState: -1,
	}
	for _, opt := range opts {
		opt(km)
	}
	baseOpts := append([]model.Option{model.WithYRequired(false)}, km.baseOpts...)
	km.BaseEstimator = model.NewBaseEstimator("KMeans", km, baseOpts...)
	return km
}

// Fit はクラスタ中心を学習する。y は任意で、クラスタリングには使われない
func (km *KMeans) Fit(X, y any) (*KMeans, error) {
	if km.nClusters <= 0 {
		return nil, errors.NewValidationError("nClusters", "must be positive", km.nClusters)
	}
	if km.maxIter <= 0 {
		return nil, errors.NewValidationError("maxIter", "must be positive", km.maxIter)
	}

	if _, err := km.BaseEstimator.Fit(X, y); err != nil {
		return nil, err
	}

	Xm := km.Input().Matrix()
	rows, _ := Xm.Dims()
	if rows < km.nClusters {
		km.Reset()
		return nil, errors.NewValidationError("nClusters",
			fmt.Sprintf("must not exceed the number of samples (%d)", rows), km.nClusters)
	}

	centers, labels, inertia, nIter, converged := km.lloyd(Xm, km.newRand())
	if !converged {
		km.Logger().Warn("lloyd iterations did not converge", log.IterationKey, nIter, log.ErrorCodeKey, log.ErrorConvergence)
		errors.Warn(errors.NewConvergenceWarning("KMeans", nIter,
			"maximum number of iterations reached before the centers stabilised"))
	}

	km.mu.Lock()
	km.centers = centers
	km.labels = labels
	km.inertia = inertia
	km.nIter = nIter
	km.mu.Unlock()

	km.Logger().Info("fit completed",
		log.OperationKey, log.OperationFit,
		log.InertiaKey, inertia,
		log.IterationKey, nIter,
		"state", km.State(),
	)
	return km, nil
}

// FitPredict は学習データのクラスタラベルを返す
func (km *KMeans) FitPredict(X, y any) (mat.Matrix, error) {
	if _, err := km.Fit(X, y); err != nil {
		return nil, err
	}
	km.mu.RLock()
	defer km.mu.RUnlock()
	out := mat.NewDense(len(km.labels), 1, nil)
	for i, l := range km.labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

// PredictArray は各サンプルの最近傍クラスタを返す
func (km *KMeans) PredictArray(X *ndarray.Array) (mat.Matrix, error) {
	Xm, centers, err := km.prepare("KMeans.Predict", X)
	if err != nil {
		return nil, err
	}
	rows, _ := Xm.Dims()
	labels := make([]int, rows)
	assign(Xm, centers, labels, make([]float64, rows))

	out := mat.NewDense(rows, 1, nil)
	for i, l := range labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

// Transform はデータを各クラスタ中心とのユークリッド距離に変換する
func (km *KMeans) Transform(X any) (mat.Matrix, error) {
	const op = "KMeans.Transform"
	if !km.IsFitted() {
		return nil, errors.NewNotFittedError(km.Name(), "Transform")
	}
	xa, err := ndarray.AsArray(X)
	if err != nil {
		return nil, err
	}
	Xm, centers, err := km.prepare(op, xa)
	if err != nil {
		return nil, err
	}

	rows, _ := Xm.Dims()
	distances := mat.NewDense(rows, len(centers), nil)
	for i := 0; i < rows; i++ {
		sample := Xm.RawRowView(i)
		for c, center := range centers {
			distances.Set(i, c, floats.Distance(sample, center, 2))
		}
	}
	return distances, nil
}

// Reset はモデルを未学習状態に戻す
func (km *KMeans) Reset() {
	km.BaseEstimator.Reset()
	km.mu.Lock()
	defer km.mu.Unlock()
	km.centers = nil
	km.labels = nil
	km.inertia = 0
	km.nIter = 0
}

// ClusterCenters は学習されたクラスタ中心のコピーを返す
func (km *KMeans) ClusterCenters() [][]float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()

	centers := make([][]float64, len(km.centers))
	for i := range km.centers {
		centers[i] = make([]float64, len(km.centers[i]))
		copy(centers[i], km.centers[i])
	}
	return centers
}

// Labels は学習データのクラスタラベルを返す
func (km *KMeans) Labels() []int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	if km.labels == nil {
		return nil
	}
	labels := make([]int, len(km.labels))
	copy(labels, km.labels)
	return labels
}

// Inertia はクラスタ内平方和を返す
func (km *KMeans) Inertia() float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.inertia
}

// NIter は実行されたイテレーション数を返す
func (km *KMeans) NIter() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.nIter
}

// prepare は予測用の入力と中心のスナップショットを検証して返す
func (km *KMeans) prepare(op string, X *ndarray.Array) (*mat.Dense, [][]float64, error) {
	if X == nil {
		return nil, nil, errors.NewMissingArgumentError(op, "X")
	}
	km.mu.RLock()
	centers := km.centers
	km.mu.RUnlock()
	if centers == nil {
		return nil, nil, errors.NewNotFittedError(km.Name(), "Predict")
	}

	Xm := X.Matrix()
	if Xm == nil {
		return nil, nil, errors.NewEmptyInputError(op, "X")
	}
	if _, cols := Xm.Dims(); cols != len(centers[0]) {
		return nil, nil, errors.NewDimensionError(op, len(centers[0]), cols, 1)
	}
	return Xm, centers, nil
}

func (km *KMeans) newRand() *rand.Rand {
	if km.randomState >= 0 {
		s := uint64(km.randomState)
		return rand.New(rand.NewPCG(s, s))
	}
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
}

// lloyd は割り当てと中心の更新を収束するまで繰り返す
func (km *KMeans) lloyd(X *mat.Dense, rng *rand.Rand) (centers [][]float64, labels []int, inertia float64, nIter int, converged bool) {
	rows, _ := X.Dims()
	centers = initKMeansPlusPlus(X, km.nClusters, rng)
	labels = make([]int, rows)
	dist := make([]float64, rows)

	for nIter < km.maxIter {
		nIter++
		assign(X, centers, labels, dist)
		next := updateCenters(X, labels, centers)

		shift := 0.0
		for c := range centers {
			shift = math.Max(shift, floats.Distance(centers[c], next[c], 2))
		}
		centers = next

		km.Logger().Debug("kmeans iteration", log.IterationKey, nIter, "shift", shift)
		if shift <= km.tol {
			converged = true
			break
		}
	}

	inertia = assign(X, centers, labels, dist)
	return centers, labels, inertia, nIter, converged
}

// initKMeansPlusPlus は k-means++ で初期中心を選ぶ
func initKMeansPlusPlus(X *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	rows, cols := X.Dims()
	centers := make([][]float64, 0, k)

	first := make([]float64, cols)
	copy(first, X.RawRowView(rng.IntN(rows)))
	centers = append(centers, first)

	weights := make([]float64, rows)
	for len(centers) < k {
		// 最も近い中心までの距離の二乗に比例する確率で選ぶ
		for i := 0; i < rows; i++ {
			sample := X.RawRowView(i)
			minDist := math.Inf(1)
			for _, center := range centers {
				minDist = math.Min(minDist, floats.Distance(sample, center, 2))
			}
			weights[i] = minDist * minDist
		}

		target := rng.Float64() * floats.Sum(weights)
		selected := 0
		cumSum := 0.0
		for i, w := range weights {
			cumSum += w
			if cumSum >= target {
				selected = i
				break
			}
		}

		center := make([]float64, cols)
		copy(center, X.RawRowView(selected))
		centers = append(centers, center)
	}
	return centers
}

// assign は各サンプルを最近傍の中心に割り当て、慣性を返す
func assign(X *mat.Dense, centers [][]float64, labels []int, dist []float64) float64 {
	rows, _ := X.Dims()
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			sample := X.RawRowView(i)
			best, bestDist := 0, math.Inf(1)
			for c, center := range centers {
				if d := floats.Distance(sample, center, 2); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
			dist[i] = bestDist * bestDist
		}
	})
	return floats.Sum(dist)
}

// updateCenters は各クラスタの平均を新しい中心とする
// サンプルが割り当てられなかったクラスタは元の中心を保つ
func updateCenters(X *mat.Dense, labels []int, prev [][]float64) [][]float64 {
	_, cols := X.Dims()
	next := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for c := range next {
		next[c] = make([]float64, cols)
	}
	for i, l := range labels {
		floats.Add(next[l], X.RawRowView(i))
		counts[l]++
	}
	for c := range next {
		if counts[c] == 0 {
			copy(next[c], prev[c])
			continue
		}
		floats.Scale(1/float64(counts[c]), next[c])
	}
	return next
}
