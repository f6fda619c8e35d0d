package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the worker cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Temporal.Address) == "" {
		return fmt.Errorf("config: TEMPORAL_ADDRESS must not be empty")
	}
	if strings.TrimSpace(c.Temporal.Namespace) == "" {
		return fmt.Errorf("config: TEMPORAL_NAMESPACE must not be empty")
	}
	if strings.TrimSpace(c.Temporal.TaskQueue) == "" {
		return fmt.Errorf("config: TEMPORAL_TASK_QUEUE must not be empty")
	}
	if c.Worker.MaxConcurrentActivities <= 0 {
		return fmt.Errorf("config: MAX_CONCURRENT_ACTIVITIES must be positive, got %d", c.Worker.MaxConcurrentActivities)
	}
	if c.Worker.MaxConcurrentWorkflowTasks <= 0 {
		return fmt.Errorf("config: MAX_CONCURRENT_WORKFLOW_TASKS must be positive, got %d", c.Worker.MaxConcurrentWorkflowTasks)
	}
	for name, root := range map[string]string{
		"MEDIA_INPUT_ROOT":      c.Media.InputRoot,
		"MEDIA_PROCESSING_ROOT": c.Media.ProcessingRoot,
		"MEDIA_STAGING_ROOT":    c.Media.StagingRoot,
		"MEDIA_OUTPUT_ROOT":     c.Media.OutputRoot,
	} {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("config: %s must not be empty", name)
		}
	}
	if c.Matching.ConfidenceThreshold <= 0 || c.Matching.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: MATCH_CONFIDENCE_THRESHOLD must be in (0, 1], got %v", c.Matching.ConfidenceThreshold)
	}
	if strings.TrimSpace(c.Anthropic.Model) == "" {
		return fmt.Errorf("config: ANTHROPIC_MODEL must not be empty")
	}
	return nil
}
