// Package history persists a local record of finished organize runs so
// operators can review past results without querying the Temporal server.
package history
