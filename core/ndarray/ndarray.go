// Package ndarray provides the canonical numeric array estimators work on,
// and AsArray, which coerces array-like Go values into it.
//
// An Array is a dense float64 buffer in row-major order with an arbitrary
// number of dimensions. Two-dimensional views are exposed as gonum matrices so
// estimators can use gonum/mat for the numeric work.
package ndarray

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/pkg/errors"
)

// Array is an n-dimensional float64 array.
type Array struct {
	shape []int
	data  []float64
}

// New creates an Array with the given shape backed by data.
// data is used directly; its length must equal the product of shape.
// A nil data allocates a zeroed buffer.
func New(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, errors.NewInputError("ndarray.New", "shape", fmt.Sprintf("negative dimension %d", d))
		}
		size *= d
	}
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		return nil, errors.NewDimensionError("ndarray.New", size, len(data), 0)
	}
	return &Array{shape: append([]int(nil), shape...), data: data}, nil
}

// FromMatrix copies a gonum matrix into a 2-D Array.
func FromMatrix(m mat.Matrix) *Array {
	r, c := m.Dims()
	data := make([]float64, r*c)
	if d, ok := m.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < r; i++ {
			copy(data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
	} else {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				data[i*c+j] = m.At(i, j)
			}
		}
	}
	return &Array{shape: []int{r, c}, data: data}
}

// FromVector copies a gonum vector into a 1-D Array.
func FromVector(v mat.Vector) *Array {
	n := v.Len()
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = v.AtVec(i)
	}
	return &Array{shape: []int{n}, data: data}
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	shape := make([]int, len(a.shape))
	copy(shape, a.shape)
	return shape
}

// NDim returns the number of dimensions. A scalar has zero.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Size returns the number of elements: the product of the shape, 1 for a scalar.
func (a *Array) Size() int {
	return len(a.data)
}

// Dim returns the size of dimension i.
func (a *Array) Dim(i int) int {
	return a.shape[i]
}

// Data returns the underlying row-major buffer. Writes are visible to the array.
func (a *Array) Data() []float64 {
	return a.data
}

// At returns the element at the given multi-index.
// It panics if the index is out of range, like slice indexing.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: index has %d dimensions, array has %d", len(idx), len(a.shape)))
	}
	off := 0
	for i, k := range idx {
		if k < 0 || k >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range for dimension %d of size %d", k, i, a.shape[i]))
		}
		off = off*a.shape[i] + k
	}
	return a.data[off]
}

// Rows returns the number of samples along the first axis when the array is
// read as a sample matrix: 1 for a 1-D array, shape[0] otherwise.
func (a *Array) Rows() int {
	switch len(a.shape) {
	case 0:
		return 0
	case 1:
		return 1
	default:
		return a.shape[0]
	}
}

// Cols returns the number of features per sample when the array is read as a
// sample matrix: the length of a 1-D array, the product of the trailing
// dimensions otherwise.
func (a *Array) Cols() int {
	switch len(a.shape) {
	case 0:
		return 0
	case 1:
		return a.shape[0]
	default:
		return prod(a.shape[1:])
	}
}

// Matrix returns the array as a Rows() x Cols() matrix sharing the array's
// storage. It returns nil for scalars and empty arrays, which gonum cannot
// represent.
func (a *Array) Matrix() *mat.Dense {
	r, c := a.Rows(), a.Cols()
	if r == 0 || c == 0 {
		return nil
	}
	return mat.NewDense(r, c, a.data)
}

// Vector returns the flattened array as a vector sharing the array's storage,
// or nil when empty.
func (a *Array) Vector() *mat.VecDense {
	if len(a.data) == 0 {
		return nil
	}
	return mat.NewVecDense(len(a.data), a.data)
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	return &Array{shape: a.Shape(), data: data}
}

func (a *Array) String() string {
	return fmt.Sprintf("ndarray%v%v", a.shape, a.data)
}

func prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
