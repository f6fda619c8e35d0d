// Package detector separates real episode files from extras, menus, and
// trailers using a file-size histogram. Episode files of one series cluster
// tightly around bitrate times duration; everything else lands in other
// size bands.
package detector
