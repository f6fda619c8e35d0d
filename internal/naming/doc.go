// Package naming implements filename and title normalization rules for the
// library layout: Plex-style episode names, show directory names, and
// catalogue search cleanup for raw folder names.
package naming
