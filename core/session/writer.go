package session

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// writer commits the session cookie right before the header is written.
type writer struct {
	http.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (w *writer) flushCommit() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit(w.ResponseWriter)
}

func (w *writer) WriteHeader(status int) {
	w.flushCommit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *writer) Write(b []byte) (int, error) {
	w.flushCommit()
	return w.ResponseWriter.Write(b)
}

func (w *writer) Flush() {
	w.flushCommit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *writer) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.flushCommit()
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *writer) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
