package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
)

// ErrListenFailure is returned by servers built with NewFailingHTTPServer.
var ErrListenFailure = errors.New("listen failure")

// StubHTTPServer satisfies the server package's httpServer interface. Calls are
// counted atomically because Run listens on a separate goroutine.
type StubHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error
	// Block, when set, makes Shutdown wait until it is closed or ctx ends.
	Block chan struct{}

	listenCalls   atomic.Int32
	shutdownCalls atomic.Int32
}

// NewFailingHTTPServer returns a stub whose ListenAndServe fails immediately.
func NewFailingHTTPServer() *StubHTTPServer {
	return &StubHTTPServer{ListenErr: ErrListenFailure}
}

// NewClosedHTTPServer returns a stub that reports a normal close from ListenAndServe.
func NewClosedHTTPServer() *StubHTTPServer {
	return &StubHTTPServer{ListenErr: http.ErrServerClosed}
}

// NewBlockingHTTPServer returns a stub whose Shutdown only returns on ctx expiry
// or when Block is closed.
func NewBlockingHTTPServer() *StubHTTPServer {
	return &StubHTTPServer{Block: make(chan struct{})}
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.listenCalls.Add(1)
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdownCalls.Add(1)
	if s.Block != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Block:
		}
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NewServeMux()
	}
	return s.HandlerVal
}

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int { return int(s.listenCalls.Load()) }

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int { return int(s.shutdownCalls.Load()) }
