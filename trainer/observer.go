package trainer

import (
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/metrics"
	"github.com/sentencelab/simcl/observability"
)

// InfraObserver forwards infrastructure client operations to metrics and,
// on failure, to the log.
type InfraObserver struct {
	log *logger.LoggerClient
	met *metrics.Metrics
}

// NewInfraObserver builds the default observer wired to the training metrics.
func NewInfraObserver(log *logger.LoggerClient, met *metrics.Metrics) *InfraObserver {
	return &InfraObserver{log: log, met: met}
}

// ObserveOperation records one infrastructure operation.
func (o *InfraObserver) ObserveOperation(ctx observability.OperationContext) {
	status := "ok"
	if ctx.Error != nil {
		status = "error"
		o.log.Warn("infrastructure operation failed", ctx.Error, map[string]interface{}{
			"component": ctx.Component,
			"operation": ctx.Operation,
			"resource":  ctx.Resource,
		})
	}
	o.met.IncrementInfraOperations(ctx.Component, ctx.Operation, status)
}
