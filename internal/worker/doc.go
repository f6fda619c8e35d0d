// Package worker wires the Temporal client and registers the coordinators
// and activities on the configured task queue.
package worker
