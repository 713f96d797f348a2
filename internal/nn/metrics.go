package nn

import (
	"fmt"

	"github.com/percept-ml/percept/internal/tensor"
)

// Accuracy returns the fraction of rows in logits whose argmax equals the
// corresponding label.
func Accuracy(logits *tensor.Tensor, labels []int32) float64 {
	pred := logits.ArgMaxRows()
	if len(pred) != len(labels) {
		panic(fmt.Sprintf("Accuracy: %d predictions for %d labels", len(pred), len(labels)))
	}
	if len(labels) == 0 {
		return 0
	}

	correct := 0
	for i, p := range pred {
		if int32(p) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
