package model

import "gonum.org/v1/gonum/mat"

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Transform は学習済みのパラメータでデータを変換する
	Transform(X any) (mat.Matrix, error)
}

// InverseTransformer は変換を元に戻せる Transformer
type InverseTransformer interface {
	Transformer

	// InverseTransform は変換前の空間にデータを戻す
	InverseTransform(X any) (mat.Matrix, error)
}
