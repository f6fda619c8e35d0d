// Package services defines the shared error taxonomy used by activity
// implementations and external service clients.
package services
