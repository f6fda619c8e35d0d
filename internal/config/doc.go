// Package config loads the process configuration snapshot from the
// environment. Coordinators never read the environment themselves; they
// receive everything they need as inputs.
package config
