// Package anthropic wraps the Anthropic Messages API for episode matching:
// one structured-output prompt call that assigns each dialogue document to a
// season/episode slot. The JSON reply is validated here; downstream code
// only sees the parsed form.
package anthropic
