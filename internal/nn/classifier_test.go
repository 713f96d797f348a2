package nn

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percept-ml/percept/internal/tensor"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 200}}, false},
		{"no hidden layers", Config{Inputs: 4, Outputs: 2}, false},
		{"zero inputs", Config{Inputs: 0, Outputs: 10}, true},
		{"negative outputs", Config{Inputs: 784, Outputs: -1}, true},
		{"zero hidden width", Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigEqual(t *testing.T) {
	a := Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 200}}

	assert.True(t, a.Equal(Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 200}}))
	assert.False(t, a.Equal(Config{Inputs: 784, Outputs: 10, Hidden: []int{400}}))
	assert.False(t, a.Equal(Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 100}}))
	assert.False(t, a.Equal(Config{Inputs: 100, Outputs: 10, Hidden: []int{400, 200}}))
}

func TestConfigString(t *testing.T) {
	cfg := Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 200, 100}}
	assert.Equal(t, "784-400-200-100-10", cfg.String())

	assert.Equal(t, "4-2", Config{Inputs: 4, Outputs: 2}.String())
}

func TestNewClassifierLayerShapes(t *testing.T) {
	cfg := Config{Inputs: 784, Outputs: 10, Hidden: []int{400, 200, 100}}
	c, err := NewClassifier(cfg, testRand())
	require.NoError(t, err)

	sd := c.StateDict()
	// Linear at 0, 2, 4, final at 6 (ReLU between each).
	assert.Len(t, sd, 8)
	assert.Equal(t, tensor.Shape{400, 784}, sd["0.weight"].Shape())
	assert.Equal(t, tensor.Shape{400}, sd["0.bias"].Shape())
	assert.Equal(t, tensor.Shape{200, 400}, sd["2.weight"].Shape())
	assert.Equal(t, tensor.Shape{100, 200}, sd["4.weight"].Shape())
	assert.Equal(t, tensor.Shape{10, 100}, sd["6.weight"].Shape())
}

func TestNewClassifierInvalidConfig(t *testing.T) {
	_, err := NewClassifier(Config{Inputs: 0, Outputs: 10}, testRand())
	assert.Error(t, err)
}

func TestClassifierConfigIsCopy(t *testing.T) {
	cfg := Config{Inputs: 8, Outputs: 2, Hidden: []int{4}}
	c, err := NewClassifier(cfg, testRand())
	require.NoError(t, err)

	got := c.Config()
	got.Hidden[0] = 99
	assert.Equal(t, 4, c.Config().Hidden[0])
}

func TestClassifierForward(t *testing.T) {
	cfg := Config{Inputs: 4, Outputs: 3, Hidden: []int{5}}
	c, err := NewClassifier(cfg, testRand())
	require.NoError(t, err)

	x, err := tensor.FromSlice(make([]float32, 8), tensor.Shape{2, 4})
	require.NoError(t, err)

	logits := c.Forward(x)
	assert.Equal(t, tensor.Shape{2, 3}, logits.Shape())
}

func TestClassifierForward1DInput(t *testing.T) {
	cfg := Config{Inputs: 4, Outputs: 3, Hidden: []int{5}}
	c, err := NewClassifier(cfg, testRand())
	require.NoError(t, err)

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4})
	require.NoError(t, err)

	logits := c.Forward(x)
	assert.Equal(t, tensor.Shape{1, 3}, logits.Shape())
}

func TestClassifierDeterministicConstruction(t *testing.T) {
	cfg := Config{Inputs: 8, Outputs: 4, Hidden: []int{6}}

	a, err := NewClassifier(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b, err := NewClassifier(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, a.StateDict()["0.weight"].AsFloat32(), b.StateDict()["0.weight"].AsFloat32())
}

func TestClassifierStateDictRoundTrip(t *testing.T) {
	cfg := Config{Inputs: 8, Outputs: 4, Hidden: []int{6, 5}}

	src, err := NewClassifier(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	dst, err := NewClassifier(cfg, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	srcSD, dstSD := src.StateDict(), dst.StateDict()
	for name, raw := range srcSD {
		assert.Equal(t, raw.AsFloat32(), dstSD[name].AsFloat32(), name)
	}
}

func TestClassifierLoadStateDictWrongArchitecture(t *testing.T) {
	src, err := NewClassifier(Config{Inputs: 8, Outputs: 4, Hidden: []int{6}}, testRand())
	require.NoError(t, err)
	dst, err := NewClassifier(Config{Inputs: 8, Outputs: 4, Hidden: []int{5}}, testRand())
	require.NoError(t, err)

	err = dst.LoadStateDict(src.StateDict())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch), "expected ErrShapeMismatch, got %v", err)
}

func TestClassifierTrainingStep(t *testing.T) {
	// One gradient step on a single example lowers the loss.
	cfg := Config{Inputs: 4, Outputs: 2, Hidden: []int{8}}
	c, err := NewClassifier(cfg, testRand())
	require.NoError(t, err)

	x, err := tensor.FromSlice([]float32{0.5, -0.2, 0.8, 0.1}, tensor.Shape{1, 4})
	require.NoError(t, err)
	labels := []int32{1}

	loss := NewCrossEntropyLoss()
	before := loss.Forward(c.Forward(x), labels)
	c.Backward(loss.Backward())

	lr := float32(0.5)
	for _, p := range c.Parameters() {
		pd := p.Tensor().Data()
		gd := p.Grad().Data()
		for i := range pd {
			pd[i] -= lr * gd[i]
		}
		p.ZeroGrad()
	}

	after := loss.Forward(c.Forward(x), labels)
	assert.Less(t, after, before)
}

func TestReLU(t *testing.T) {
	r := NewReLU()

	x, err := tensor.FromSlice([]float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{1, 5})
	require.NoError(t, err)

	y := r.Forward(x)
	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, y.Data())

	grad, err := tensor.FromSlice([]float32{1, 1, 1, 1, 1}, tensor.Shape{1, 5})
	require.NoError(t, err)

	dx := r.Backward(grad)
	assert.Equal(t, []float32{0, 0, 0, 1, 1}, dx.Data())
}

func TestAccuracy(t *testing.T) {
	logits, err := tensor.FromSlice([]float32{
		0.9, 0.1,
		0.2, 0.8,
		0.6, 0.4,
	}, tensor.Shape{3, 2})
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, Accuracy(logits, []int32{0, 1, 1}), 1e-9)
	assert.Equal(t, 1.0, Accuracy(logits, []int32{0, 1, 0}))
}
