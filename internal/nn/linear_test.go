package nn

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percept-ml/percept/internal/tensor"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// setLinear overwrites a layer's weight and bias with known values.
func setLinear(t *testing.T, l *Linear, weight, bias []float32) {
	t.Helper()
	copy(l.Weight().Tensor().Data(), weight)
	copy(l.Bias().Tensor().Data(), bias)
}

func TestLinearForward(t *testing.T) {
	l := NewLinear(2, 3, testRand())
	setLinear(t, l,
		[]float32{
			1, 0, // row 0 of W
			0, 1,
			1, 1,
		},
		[]float32{10, 20, 30},
	)

	x, err := tensor.FromSlice([]float32{2, 5}, tensor.Shape{1, 2})
	require.NoError(t, err)

	// y = x @ W.T + b
	y := l.Forward(x)
	assert.Equal(t, tensor.Shape{1, 3}, y.Shape())
	assert.Equal(t, []float32{12, 25, 37}, y.Data())
}

func TestLinearForwardBatch(t *testing.T) {
	l := NewLinear(2, 2, testRand())
	setLinear(t, l, []float32{1, 0, 0, 1}, []float32{0, 0})

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	y := l.Forward(x)
	assert.Equal(t, []float32{1, 2, 3, 4}, y.Data())
}

func TestLinearForwardShapePanics(t *testing.T) {
	l := NewLinear(2, 3, testRand())

	bad1d, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	assert.Panics(t, func() { l.Forward(bad1d) })

	badFeatures, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3})
	require.NoError(t, err)
	assert.Panics(t, func() { l.Forward(badFeatures) })
}

func TestLinearBackward(t *testing.T) {
	l := NewLinear(2, 3, testRand())
	setLinear(t, l,
		[]float32{
			1, 2,
			3, 4,
			5, 6,
		},
		[]float32{0, 0, 0},
	)

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	l.Forward(x)

	grad, err := tensor.FromSlice([]float32{1, 1, 1}, tensor.Shape{1, 3})
	require.NoError(t, err)

	dx := l.Backward(grad)

	// dW = grad.T @ x: each row of dW is x.
	assert.Equal(t, []float32{1, 2, 1, 2, 1, 2}, l.Weight().Grad().Data())
	// db = column sums of grad.
	assert.Equal(t, []float32{1, 1, 1}, l.Bias().Grad().Data())
	// dx = grad @ W: column sums of W.
	assert.Equal(t, []float32{9, 12}, dx.Data())
}

func TestLinearBackwardAccumulates(t *testing.T) {
	l := NewLinear(2, 2, testRand())

	x, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	require.NoError(t, err)
	grad, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	require.NoError(t, err)

	l.Forward(x)
	l.Backward(grad)
	first := append([]float32(nil), l.Weight().Grad().Data()...)

	l.Forward(x)
	l.Backward(grad)
	for i, v := range l.Weight().Grad().Data() {
		assert.Equal(t, first[i]*2, v)
	}

	l.Weight().ZeroGrad()
	assert.Nil(t, l.Weight().Grad())
}

func TestLinearBackwardBeforeForwardPanics(t *testing.T) {
	l := NewLinear(2, 2, testRand())
	grad, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	require.NoError(t, err)

	assert.Panics(t, func() { l.Backward(grad) })
}

func TestLinearStateDictRoundTrip(t *testing.T) {
	src := NewLinear(3, 2, testRand())
	dst := NewLinear(3, 2, rand.New(rand.NewSource(7)))

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())
	assert.Equal(t, src.Bias().Tensor().Data(), dst.Bias().Tensor().Data())
}

func TestLinearLoadStateDictShapeMismatch(t *testing.T) {
	src := NewLinear(4, 2, testRand())
	dst := NewLinear(3, 2, testRand())

	err := dst.LoadStateDict(src.StateDict())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch), "expected ErrShapeMismatch, got %v", err)
}

func TestLinearLoadStateDictMissingKeys(t *testing.T) {
	l := NewLinear(2, 2, testRand())
	err := l.LoadStateDict(map[string]*tensor.RawTensor{})
	assert.Error(t, err)
}

func TestXavierInitBounds(t *testing.T) {
	l := NewLinear(100, 50, testRand())

	// Xavier limit for fanIn=100, fanOut=50 is sqrt(6/150) ~ 0.2.
	limit := float32(0.21)
	for _, v := range l.Weight().Tensor().Data() {
		assert.LessOrEqual(t, v, limit)
		assert.GreaterOrEqual(t, v, -limit)
	}
	for _, v := range l.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}
}
