package ingest

import (
	"errors"
	"path"
	"strings"

	"github.com/viant/afs/url"
)

// ErrLocationNotAllowed is returned for a location outside every allowed root
var ErrLocationNotAllowed = errors.New("location is outside the allowed roots")

// WithinRoots reports whether location lies at or below one of roots. Local
// paths and file:// URLs compare equal; relative paths and encoded dot
// segments are never allowed.
func WithinRoots(location string, roots []string) bool {
	target, ok := canonicalLocation(location)
	if !ok {
		return false
	}
	for _, root := range roots {
		base, ok := canonicalLocation(root)
		if !ok {
			continue
		}
		if target == base || strings.HasPrefix(target, strings.TrimSuffix(base, "/")+"/") {
			return true
		}
	}
	return false
}

// canonicalLocation renders location as scheme://host/clean/path
func canonicalLocation(location string) (string, bool) {
	location = strings.TrimSpace(location)
	if location == "" || url.IsRelative(location) {
		return "", false
	}
	lower := strings.ToLower(location)
	if strings.Contains(lower, "%2e") || strings.Contains(lower, "%2f") || strings.Contains(location, "\\") {
		return "", false
	}

	scheme := url.Scheme(location, "file")
	host := url.Host(location)
	if scheme == "file" {
		host = ""
	}
	p := url.Path(location)
	if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}
	return scheme + "://" + host + path.Clean("/"+p), true
}
