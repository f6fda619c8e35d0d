// Package workflows holds the two durable coordinators: OrganizeLibrary
// drives the six-stage pipeline over one series, ProcessFolder runs the
// per-disc state machine as a child workflow. Coordinator code is
// deterministic; every side effect goes through the activities package.
package workflows
