package backend

import (
	"net/http"

	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// traceTransport проставляет X-Trace-ID каждому исходящему запросу.
type traceTransport struct {
	next http.RoundTripper
}

func (t *traceTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(traceHeader) != "" {
		return t.next.RoundTrip(r)
	}
	// RoundTripper не должен менять исходный запрос
	clone := r.Clone(r.Context())
	clone.Header.Set(traceHeader, uuid.New().String())
	return t.next.RoundTrip(clone)
}
