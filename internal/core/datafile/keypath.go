package datafile

import "strings"

// Payload is the decoded JSON object of one data file.
// Payloads are shared through the cache and must be treated as read-only.
type Payload = map[string]any

// lookup resolves a dotted key path (e.g. "ookla.speedtest_ookla_download")
// against a decoded document.
func lookup(doc any, path string) (any, bool) {
	value := doc
	for _, key := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// lookupAll resolves every path; it fails if any one of them fails.
func lookupAll(doc any, paths []string) ([]any, bool) {
	out := make([]any, len(paths))
	for i, path := range paths {
		v, ok := lookup(doc, path)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
