// Package fileutil provides the filesystem primitives behind the copy
// engine activities: enumeration, streaming copies, cross-filesystem moves,
// integrity verification, and directory tree capture.
package fileutil
