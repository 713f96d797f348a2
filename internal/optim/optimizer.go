// Package optim implements optimization algorithms for training networks.
//
// Gradients are accumulated on parameters by the backward pass, so an
// optimizer step reads them straight off the parameters it owns:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//
//	for each batch {
//	    optimizer.ZeroGrad()
//	    logits := model.Forward(images)
//	    loss := lossFn.Forward(logits, labels)
//	    model.Backward(lossFn.Backward())
//	    optimizer.Step()
//	}
package optim

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in-place.
	// Parameters with no accumulated gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	LR() float32
}
