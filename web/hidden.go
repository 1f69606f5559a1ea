package web

import (
	"net/http"
	"path"
	"strings"
)

// HiddenHandler returns an http.Handler that answers 404 for paths that
// contain an element starting with a period, or that are at or below one of
// the given site-relative names, such as the template folder or the config
// file. Other requests are passed to h.
func HiddenHandler(h http.Handler, names ...string) http.Handler {
	hidden := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.Trim(path.Clean("/"+n), "/")
		if n != "" {
			hidden = append(hidden, n)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isHidden(r.URL.Path, hidden) {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// isHidden reports whether the URL path p should not be served.
func isHidden(p string, hidden []string) bool {
	if containsSpecialFile(p) {
		return true
	}
	name := strings.Trim(path.Clean("/"+p), "/")
	for _, h := range hidden {
		if name == h || strings.HasPrefix(name, h+"/") {
			return true
		}
	}
	return false
}

// containsSpecialFile reports whether the slash separated name contains an
// element starting with a period. Scheduled posts keep their state in such
// a file.
func containsSpecialFile(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
