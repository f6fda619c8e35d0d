package main

import (
	"fmt"
	"sync"

	"go.temporal.io/sdk/client"

	"sera/internal/config"
	"sera/internal/logging"
	"sera/internal/worker"
)

// commandContext lazily shares the configuration snapshot and Temporal
// client across subcommands.
type commandContext struct {
	mu     sync.Mutex
	cfg    *config.Config
	client client.Client
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureClient() (client.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	cl, err := worker.Dial(cfg, logging.NewNop())
	if err != nil {
		return nil, err
	}
	c.client = cl
	return cl, nil
}

func (c *commandContext) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

// childWorkflowID names the disc coordinator spawned for one folder.
func childWorkflowID(workflowID, folderName string) string {
	return workflowID + "-" + folderName
}
