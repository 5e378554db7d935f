package model

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/core/ndarray"
	"github.com/YuminosukeSato/estimator/pkg/errors"
	"github.com/YuminosukeSato/estimator/pkg/log"
)

// Config は推定器ごとの入力検証とライフサイクルの設定
type Config struct {
	// YRequired が true の場合、SetupInput は空でないラベル y を要求する
	YRequired bool
	// FitRequired が true の場合、Fit が成功するまで Predict は失敗する
	FitRequired bool
}

// DefaultConfig はラベル必須・学習必須のデフォルト設定を返す
func DefaultConfig() Config {
	return Config{YRequired: true, FitRequired: true}
}

// Option は BaseEstimator の設定オプション
type Option func(*BaseEstimator)

// WithConfig は設定をまとめて指定する
func WithConfig(cfg Config) Option {
	return func(e *BaseEstimator) {
		e.config = cfg
	}
}

// WithYRequired はラベルが必須かどうかを設定する
func WithYRequired(required bool) Option {
	return func(e *BaseEstimator) {
		e.config.YRequired = required
	}
}

// WithFitRequired は予測前の学習が必須かどうかを設定する
func WithFitRequired(required bool) Option {
	return func(e *BaseEstimator) {
		e.config.FitRequired = required
	}
}

// WithLogger は推定器が使うロガーを設定する。未指定の場合は log.GetLogger() を使う
func WithLogger(logger log.Logger) Option {
	return func(e *BaseEstimator) {
		e.logger = logger
	}
}

// BaseEstimator は全てのモデルの基底となる構造体
//
// 入力の正規化と検証（SetupInput）、学習状態の管理、そして
// 「Fit してから Predict」のライフサイクルを担当する。予測そのものは
// 構築時に渡された Predictor に委譲する。
//
// 具体的なモデルは *BaseEstimator を埋め込み、自分自身を Predictor として渡す:
//
//	type Model struct {
//	    *model.BaseEstimator
//	}
//
//	func NewModel() *Model {
//	    m := &Model{}
//	    m.BaseEstimator = model.NewBaseEstimator("Model", m)
//	    return m
//	}
//
// Model が PredictArray を定義しなければ、埋め込まれた BaseEstimator の
// PredictArray が使われ、ErrNotImplemented が返る。
type BaseEstimator struct {
	mu sync.RWMutex

	name      string
	config    Config
	predictor Predictor
	logger    log.Logger

	state     EstimatorState
	x         *ndarray.Array
	y         *ndarray.Array
	nSamples  int
	nFeatures int
}

// NewBaseEstimator は新しい BaseEstimator を作成する
//
// predictor が nil の場合は BaseEstimator 自身の PredictArray が使われる。
func NewBaseEstimator(name string, predictor Predictor, opts ...Option) *BaseEstimator {
	if name == "" {
		name = "BaseEstimator"
	}
	e := &BaseEstimator{
		name:   name,
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if predictor == nil {
		predictor = e
	}
	e.predictor = predictor
	return e
}

// SetupInput は入力データを数値配列に変換・検証し、推定器に保存する
//
// X は空であってはならない。1次元の X は 1 サンプルとして扱われ、
// 特徴量数は配列の長さになる。それ以外は先頭の次元がサンプル数、
// 残りの次元の積が特徴量数になる。
//
// YRequired の場合、y が nil なら ErrMissingArgument、空なら ErrInvalidInput。
// それ以外では y は検証されず、数値に変換できた場合のみ保持される。
// 検証に失敗した場合、以前に保存された状態は変更されない。
func (e *BaseEstimator) SetupInput(X, y any) error {
	const op = "SetupInput"

	xa, err := coerce(op, "X", X)
	if err != nil {
		return err
	}
	if xa.Size() == 0 {
		return errors.NewEmptyInputError(op, "X")
	}
	if xa.NDim() == 0 {
		return errors.NewInputError(op, "X", "expected at least one dimension, got a scalar")
	}

	var ya *ndarray.Array
	switch {
	case e.config.YRequired:
		if y == nil {
			return errors.NewMissingArgumentError(op, "y")
		}
		if ya, err = coerce(op, "y", y); err != nil {
			return err
		}
		if ya.Size() == 0 {
			return errors.NewEmptyInputError(op, "y")
		}
	case y != nil:
		// ラベルは任意なので変換できなければ保持せずに学習を続ける
		if ya, err = coerce(op, "y", y); err != nil {
			e.Logger().Debug("optional labels ignored", err, log.ErrorCodeKey, log.ErrorInvalidInput)
			ya = nil
		}
	}

	e.mu.Lock()
	e.x = xa
	e.y = ya
	e.nSamples = xa.Rows()
	e.nFeatures = xa.Cols()
	e.state = Fitted
	e.mu.Unlock()

	e.Logger().Debug("input stored",
		log.OperationKey, log.OperationFit,
		log.ShapeKey, xa.Shape(),
		log.SamplesKey, xa.Rows(),
		log.FeaturesKey, xa.Cols(),
		log.LabelsKey, ya != nil,
	)
	return nil
}

// Fit は入力を検証・保存し、メソッドチェーンのために推定器自身を返す
func (e *BaseEstimator) Fit(X, y any) (*BaseEstimator, error) {
	if err := e.SetupInput(X, y); err != nil {
		return nil, err
	}
	return e, nil
}

// Predict はライフサイクルを確認した上で Predictor に予測を委譲する
//
// X は nil でなければ数値配列に変換される（nil はそのまま Predictor に渡される）。
// 学習済み、または FitRequired が false の場合のみ委譲し、それ以外は
// ErrInvalidState を返す。Predictor 内の panic はエラーに変換される。
func (e *BaseEstimator) Predict(X any) (pred mat.Matrix, err error) {
	const op = "Predict"

	var xa *ndarray.Array
	if X != nil {
		if xa, err = coerce(op, "X", X); err != nil {
			return nil, err
		}
	}

	e.mu.RLock()
	fitted := e.state == Fitted
	fitRequired := e.config.FitRequired
	predictor := e.predictor
	e.mu.RUnlock()

	if !fitted && fitRequired {
		err := errors.NewNotFittedError(e.name, op)
		e.Logger().Debug("predict rejected", err, log.ErrorCodeKey, log.ErrorNotFitted)
		return nil, err
	}

	defer errors.Recover(&err, e.name+"."+op)

	pred, err = predictor.PredictArray(xa)
	if err != nil {
		if errors.Is(err, errors.ErrNotImplemented) {
			e.Logger().Debug("predict rejected", err, log.ErrorCodeKey, log.ErrorNotImplemented)
		}
		return nil, err
	}
	if pred != nil {
		r, _ := pred.Dims()
		e.Logger().Debug("predicted", log.OperationKey, log.OperationPredict, log.PredsKey, r)
	}
	return pred, nil
}

// PredictArray は予測ルーチンの既定実装で、常に ErrNotImplemented を返す
// 具体的なモデルはこのメソッドを定義して上書きする。
func (e *BaseEstimator) PredictArray(X *ndarray.Array) (mat.Matrix, error) {
	return nil, errors.NewNotImplementedError(e.name, "PredictArray")
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = NotFitted
	e.x = nil
	e.y = nil
	e.nSamples = 0
	e.nFeatures = 0
}

// Name はモデル名を返す
func (e *BaseEstimator) Name() string {
	return e.name
}

// Config は推定器の設定を返す
func (e *BaseEstimator) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// Dims は最後に学習した X のサンプル数と特徴量数を返す
func (e *BaseEstimator) Dims() (nSamples, nFeatures int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nSamples, e.nFeatures
}

// NSamples は最後に学習した X のサンプル数を返す
func (e *BaseEstimator) NSamples() int {
	n, _ := e.Dims()
	return n
}

// NFeatures は最後に学習した X の特徴量数を返す
func (e *BaseEstimator) NFeatures() int {
	_, n := e.Dims()
	return n
}

// Input は保存された X を返す（未学習の場合は nil）
func (e *BaseEstimator) Input() *ndarray.Array {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.x
}

// Target は保存された y を返す（未指定の場合は nil）
func (e *BaseEstimator) Target() *ndarray.Array {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.y
}

// State は現在の状態のスナップショットを返す
func (e *BaseEstimator) State() ModelState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ModelState{
		Name:        e.name,
		Fitted:      e.state == Fitted,
		NSamples:    e.nSamples,
		NFeatures:   e.nFeatures,
		HasLabels:   e.y != nil,
		YRequired:   e.config.YRequired,
		FitRequired: e.config.FitRequired,
	}
}

// Logger はモデル名付きのロガーを返す
func (e *BaseEstimator) Logger() log.Logger {
	logger := e.logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return logger.With(log.ModelNameKey, e.name)
}

func coerce(op, param string, v any) (*ndarray.Array, error) {
	a, err := ndarray.AsArray(v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: %s", op, param)
	}
	return a, nil
}
