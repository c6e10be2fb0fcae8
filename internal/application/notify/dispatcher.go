package notify

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher delivers queued notifications through the transport after
// the producing state mutation has committed. Failures are logged and
// returned as DeliveryError values; they are never escalated to a fault.
type Dispatcher struct {
	transport Transport
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(transport Transport, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{transport: transport, logger: logger}
}

// Transport returns the underlying transport (for raw relay forwarding)
func (d *Dispatcher) Transport() Transport {
	return d.transport
}

// Dispatch sends every queued notification. All deliveries are
// attempted; per-recipient failures are collected and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, q *Queue) []*DeliveryError {
	var failures []*DeliveryError
	for _, n := range q.pending {
		if err := d.transport.Notify(ctx, n); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("participant_id", n.ParticipantID),
				zap.Error(err),
			)
			failures = append(failures, &DeliveryError{ParticipantID: n.ParticipantID, Err: err})
		}
	}
	q.pending = nil
	return failures
}
