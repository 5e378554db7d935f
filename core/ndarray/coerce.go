package ndarray

import (
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/estimator/core/parallel"
	"github.com/YuminosukeSato/estimator/pkg/errors"
)

// 並列コピーに切り替える行数の閾値
const parallelCopyThreshold = 1000

// AsArray coerces an array-like value into an *Array.
//
// Accepted inputs:
//   - *Array, returned as is (no copy)
//   - Array, copied
//   - mat.Vector (1-D) and mat.Matrix (2-D), copied
//   - slices and Go arrays of any depth whose leaves are integer, unsigned,
//     floating point or bool values, including []any nests of those
//   - a single number, which becomes a 0-d array
//
// Nested sequences must be rectangular. Anything else, including nil, fails
// with an error of kind errors.ErrInvalidInput. Boolean leaves are converted to
// 0 and 1 and raise a DataConversionWarning.
func AsArray(v any) (*Array, error) {
	const op = "AsArray"

	switch x := v.(type) {
	case nil:
		return nil, errors.NewInputError(op, "value", "cannot convert nil to a numeric array")
	case *Array:
		if x == nil {
			return nil, errors.NewInputError(op, "value", "cannot convert nil to a numeric array")
		}
		return x, nil
	case Array:
		return x.Clone(), nil
	case mat.Vector:
		if isNilPointer(x) {
			return nil, errors.NewInputError(op, "value", "cannot convert a nil vector to a numeric array")
		}
		return FromVector(x), nil
	case mat.Matrix:
		if isNilPointer(x) {
			return nil, errors.NewInputError(op, "value", "cannot convert a nil matrix to a numeric array")
		}
		return FromMatrix(x), nil
	case []float64:
		data := make([]float64, len(x))
		copy(data, x)
		return &Array{shape: []int{len(x)}, data: data}, nil
	case [][]float64:
		return fromFloatRows(op, x)
	}

	return fromReflect(op, reflect.ValueOf(v))
}

// isNilPointer はインターフェースに包まれた nil ポインタを検出する
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// fromFloatRows is the fast path for the most common caller format.
func fromFloatRows(op string, rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{shape: []int{0}, data: []float64{}}, nil
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.NewInputError(op, "value",
				fmt.Sprintf("ragged nested sequence: row %d has %d elements, expected %d", i, len(row), cols))
		}
	}

	data := make([]float64, len(rows)*cols)
	parallel.ParallelizeWithThreshold(len(rows), parallelCopyThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			copy(data[i*cols:(i+1)*cols], rows[i])
		}
	})
	return &Array{shape: []int{len(rows), cols}, data: data}, nil
}

func fromReflect(op string, rv reflect.Value) (*Array, error) {
	shape := inferShape(rv)

	c := &converter{op: op, shape: shape, data: make([]float64, 0, prod(shape))}
	if err := c.flatten(rv, 0); err != nil {
		return nil, err
	}
	if c.sawBool {
		errors.Warn(errors.NewDataConversionWarning("bool", "float64", "boolean values were converted to 0 and 1"))
	}
	return &Array{shape: shape, data: c.data}, nil
}

// inferShape follows the first element of every nesting level.
// Rectangularity is checked later by flatten.
func inferShape(rv reflect.Value) []int {
	shape := []int{}
	cur := unwrap(rv)
	for cur.IsValid() && isSequence(cur) {
		n := cur.Len()
		shape = append(shape, n)
		if n == 0 {
			break
		}
		cur = unwrap(cur.Index(0))
	}
	return shape
}

type converter struct {
	op      string
	shape   []int
	data    []float64
	sawBool bool
}

func (c *converter) flatten(v reflect.Value, depth int) error {
	v = unwrap(v)

	if depth == len(c.shape) {
		f, err := c.scalar(v)
		if err != nil {
			return err
		}
		c.data = append(c.data, f)
		return nil
	}

	if !v.IsValid() || !isSequence(v) || v.Len() != c.shape[depth] {
		return errors.NewInputError(c.op, "value",
			fmt.Sprintf("ragged nested sequence: inconsistent length at depth %d, expected shape %v", depth, c.shape))
	}
	for i := 0; i < v.Len(); i++ {
		if err := c.flatten(v.Index(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) scalar(v reflect.Value) (float64, error) {
	if !v.IsValid() {
		return 0, errors.NewInputError(c.op, "value", "nil element in sequence")
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil
	case reflect.Bool:
		c.sawBool = true
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Slice, reflect.Array:
		return 0, errors.NewInputError(c.op, "value",
			fmt.Sprintf("ragged nested sequence: unexpected sequence below depth %d", len(c.shape)))
	default:
		return 0, errors.NewInputError(c.op, "value",
			fmt.Sprintf("non-numeric element of type %s", v.Type()))
	}
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isSequence(v reflect.Value) bool {
	k := v.Kind()
	return k == reflect.Slice || k == reflect.Array
}
