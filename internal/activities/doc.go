// Package activities implements every side-effecting operation the
// coordinators invoke: filesystem work, episode detection, subtitle
// extraction, catalogue lookups, and the LLM matcher call. Coordinators
// themselves never touch the filesystem or the network.
package activities
