package nn

import (
	"fmt"
	"math"

	"github.com/percept-ml/percept/internal/tensor"
)

// CrossEntropyLoss combines softmax and negative log likelihood.
//
// Takes raw logits (no softmax applied) and int32 class labels, which is
// both numerically stabler and cheaper than separate softmax + NLL.
type CrossEntropyLoss struct {
	probs  *tensor.Tensor // softmax probabilities from the forward pass
	labels []int32
}

// NewCrossEntropyLoss creates a new cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy over the batch.
//
// logits has shape [batch, classes]; labels has one entry per row in the
// range [0, classes).
func (l *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int32) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss: expected 2D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("CrossEntropyLoss: %d labels for batch of %d", len(labels), batch))
	}

	l.probs = tensor.Zeros(tensor.Shape{batch, classes})
	l.labels = labels

	in := logits.Data()
	probs := l.probs.Data()

	var total float64
	for i := 0; i < batch; i++ {
		row := in[i*classes : (i+1)*classes]
		out := probs[i*classes : (i+1)*classes]

		// Softmax with max subtraction for numerical stability.
		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sum float64
		for j, v := range row {
			e := math.Exp(float64(v - maxVal))
			out[j] = float32(e)
			sum += e
		}
		for j := range out {
			out[j] = float32(float64(out[j]) / sum)
		}

		label := labels[i]
		if label < 0 || int(label) >= classes {
			panic(fmt.Sprintf("CrossEntropyLoss: label %d out of range [0, %d)", label, classes))
		}
		total += -math.Log(math.Max(float64(out[label]), 1e-12))
	}

	return float32(total / float64(batch))
}

// Backward returns the gradient of the mean loss with respect to the
// logits: (softmax(x) - onehot(y)) / batch.
func (l *CrossEntropyLoss) Backward() *tensor.Tensor {
	if l.probs == nil {
		panic("CrossEntropyLoss.Backward: called before Forward")
	}

	grad := l.probs.Clone()
	shape := grad.Shape()
	batch, classes := shape[0], shape[1]

	data := grad.Data()
	inv := float32(1.0 / float64(batch))
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		row[l.labels[i]] -= 1
		for j := range row {
			row[j] *= inv
		}
	}

	return grad
}
