package worker

import (
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"sera/internal/activities"
	"sera/internal/config"
	"sera/internal/workflows"
)

// Dial connects to the Temporal server named by the configuration, routing
// SDK logs through the process logger.
func Dial(cfg *config.Config, logger *slog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal at %s: %w", cfg.Temporal.Address, err)
	}
	return c, nil
}

// New builds a worker with every coordinator and activity registered under
// its wire name.
func New(c client.Client, cfg *config.Config, acts *activities.Activities) worker.Worker {
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.Worker.MaxConcurrentActivities,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.Worker.MaxConcurrentWorkflowTasks,
	})
	w.RegisterWorkflowWithOptions(workflows.OrganizeLibrary, workflow.RegisterOptions{Name: workflows.OrganizeLibraryWorkflowName})
	w.RegisterWorkflowWithOptions(workflows.ProcessFolder, workflow.RegisterOptions{Name: workflows.ProcessFolderWorkflowName})
	w.RegisterActivity(acts)
	return w
}

// RunUntilInterrupt blocks serving task queues until SIGINT or SIGTERM.
func RunUntilInterrupt(w worker.Worker) error {
	return w.Run(worker.InterruptCh())
}
