// Package incremental records the tracked source files after a sync and
// reports which groups went stale since.
package incremental

// Entry is one tracked file: its size, modification time and content hash.
type Entry struct {
	// Path is slash-separated and relative to the project base.
	Path    string `json:"path"`
	Hash    string `json:"hash,omitempty"` // xxHash64 hex, empty in fast scans
	ModTime int64  `json:"mtime_ns"`       // UnixNano
	Size    int64  `json:"size"`
}
