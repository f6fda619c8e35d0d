package activities

import (
	"context"

	"sera/internal/history"
	"sera/internal/logging"
)

// RecordRun appends the finished run to the local history database. History
// is best-effort; a worker without a store configured records nothing.
func (a *Activities) RecordRun(ctx context.Context, record history.Record) error {
	if a.runs == nil {
		return nil
	}
	if err := a.runs.Append(ctx, record); err != nil {
		a.logger.Warn("record run failed", logging.Error(err))
		return err
	}
	return nil
}
