package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/cinemate/internal/shared"
)

// CacheHeader marks responses served from the cache with the generation they came from.
const CacheHeader = "X-Cinemate-Cache"

// Transport answers GET requests from the cache first and from the network otherwise.
//
// When the network fails for a GET, the cached offline page is served instead of the error.
// Other methods always go to the network.
type Transport struct {
	Store *Store
	Base  http.RoundTripper
}

// Transport returns a [Transport] over base, or [http.DefaultTransport] when base is nil.
func (s *Store) Transport(base http.RoundTripper) *Transport {
	return &Transport{Store: s, Base: base}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base().RoundTrip(req)
	}

	entry, err := t.Store.Get(req.URL.String())
	switch {
	case err == nil:
		t.Store.logger.Debug("cache hit", "url", req.URL.String(), "generation", entry.Generation)
		return entry.response(req), nil
	case !errors.Is(err, shared.ErrNotCached):
		return nil, err
	}

	resp, netErr := t.base().RoundTrip(req)
	if netErr == nil {
		return resp, nil
	}
	offline, err := t.Store.OfflinePage()
	if err != nil {
		return nil, fmt.Errorf("%w (no offline page: %v)", netErr, err)
	}
	t.Store.logger.Warn("network unavailable, serving offline page", "url", req.URL.String(), "error", netErr)
	return offline.response(req), nil
}

func (e *Entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheHeader, e.Generation)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
