// Package subtitles turns media files into short plain-text dialogue
// documents for the episode matcher. Extraction prefers sidecar subtitle
// files next to the media and falls back to embedded text streams via
// ffprobe/ffmpeg. Results are cached as <dir>/<basename>.txt so repeated
// runs are free.
package subtitles
