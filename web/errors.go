package web

import (
	"io/fs"
	"net/http"
	"strconv"
)

// ErrorHandler captures error responses and serves /<status>.html, such as
// /404.html, from the file system when the site has one.
func ErrorHandler(h http.Handler, fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(&errorWriter{ResponseWriter: w, fsys: fsys}, r)
	})
}

// errorWriter replaces the body of error responses with the matching page.
type errorWriter struct {
	http.ResponseWriter
	fsys     fs.FS
	replaced bool
	err      error
}

func (w *errorWriter) Write(b []byte) (int, error) {
	if w.replaced {
		return len(b), w.err
	}
	return w.ResponseWriter.Write(b)
}

func (w *errorWriter) WriteHeader(statusCode int) {
	if statusCode >= http.StatusBadRequest {
		b, err := fs.ReadFile(w.fsys, strconv.Itoa(statusCode)+".html")
		if err == nil {
			h := w.Header()
			h.Set("Content-Type", "text/html; charset=utf-8")
			h.Set("Content-Length", strconv.Itoa(len(b)))
			h.Del("X-Content-Type-Options")
			w.ResponseWriter.WriteHeader(statusCode)
			w.replaced = true
			_, w.err = w.ResponseWriter.Write(b)
			return
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}
