// Package model provides the base behaviour shared by every estimator:
// input coercion and validation, the fitted/unfitted lifecycle, and the
// Predictor capability concrete models implement.
package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/core/ndarray"
)

// Predictor は具体的なモデルが提供する予測ルーチン
//
// BaseEstimator.Predict は入力の変換とライフサイクルの確認を行った後に
// PredictArray を呼び出す。X は Predict に nil が渡された場合のみ nil になる。
type Predictor interface {
	PredictArray(X *ndarray.Array) (mat.Matrix, error)
}

// Estimator は BaseEstimator を基にしたモデルが外部に公開するインターフェース
type Estimator interface {
	Predictor

	// SetupInput は入力を検証して保存する
	SetupInput(X, y any) error
	// Predict は学習状態を確認してから予測を行う
	Predict(X any) (mat.Matrix, error)
	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
	// State は現在の状態のスナップショットを返す
	State() ModelState
}

// Scorer is implemented by estimators that can evaluate themselves on labelled data.
type Scorer interface {
	Score(X, y any) (float64, error)
}
