package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// discWindow bounds concurrent disc coordinators.
	discWindow = 5
	// copyWindow bounds concurrent file transfers.
	copyWindow = 4

	// defaultConfidenceThreshold applies when the caller leaves the
	// acceptance threshold unset.
	defaultConfidenceThreshold = 0.85
)

func defaultRetryPolicy() *temporal.RetryPolicy {
	return &temporal.RetryPolicy{
		InitialInterval:    5 * time.Second,
		BackoffCoefficient: 2.0,
		MaximumAttempts:    3,
	}
}

// withTransferOptions budgets long file transfers. The heartbeat timeout
// rides on the 30 s liveness reports the copy activities emit.
func withTransferOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy:         defaultRetryPolicy(),
	})
}

// withServiceOptions budgets subtitle extraction, catalogue lookups, and the
// matcher call.
func withServiceOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         defaultRetryPolicy(),
	})
}

// withLocalFSOptions budgets fast local filesystem operations.
func withLocalFSOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         defaultRetryPolicy(),
	})
}
