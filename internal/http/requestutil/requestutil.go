package requestutil

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	// HeaderRequestID carries the correlation id on requests and responses.
	HeaderRequestID = "X-Request-ID"
	headerIfMatch   = "If-Match"
	headerForwarded = "X-Forwarded-For"
)

var (
	requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	useFallback      atomic.Bool
	fallbackSeq      atomic.Uint64
)

// SanitizeRequestID keeps a well-formed incoming id and generates a new one otherwise.
func SanitizeRequestID(incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if requestIDPattern.MatchString(incoming) {
		return incoming
	}
	return NewRequestID()
}

// NewRequestID returns 16 random hex characters. If the RNG fails it falls back
// to a process-local sequence.
func NewRequestID() string {
	var b [8]byte
	if !useFallback.Load() {
		if _, err := rand.Read(b[:]); err == nil {
			return hex.EncodeToString(b[:])
		}
	}
	return "seq-" + strconv.FormatUint(fallbackSeq.Add(1), 10)
}

// ClientIP prefers the first X-Forwarded-For hop, then the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get(headerForwarded); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// IfMatch returns the trimmed If-Match header, or "" when absent.
func IfMatch(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerIfMatch))
}

// WantsHTML reports whether the caller asked for the rendered table rather
// than JSON, through ?format=html or an Accept header listing text/html.
func WantsHTML(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "html":
		return true
	case "json":
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
