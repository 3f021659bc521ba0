package trainer

import (
	"context"

	"github.com/sentencelab/simcl/loss"
)

// Stepper is the optimizer boundary. The training core computes losses; what
// consumes them to update encoder weights lives behind this interface,
// typically a bridge to the process that owns the model parameters.
type Stepper interface {
	Step(ctx context.Context, result loss.Result) error
}

// NoopStepper accepts every step without acting on it. Used for loss-probing
// runs and in tests.
type NoopStepper struct{}

func (NoopStepper) Step(context.Context, loss.Result) error { return nil }
