package llm

import (
	"context"
	"errors"
	"net"

	"reelcut/internal/services"
)

// classify tags err with the services marker matching its cause. Errors that
// already carry a configuration marker pass through.
func classify(stage, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrConfiguration) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, stage, op, "llm request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, stage, op, "llm request timed out", err)
	}
	return services.Wrap(services.ErrExternalTool, stage, op, "llm request failed", err)
}
