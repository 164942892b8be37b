package server

import "time"

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	// writeTimeout covers a full list round trip plus rendering.
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout is the fallback when the config leaves it unset; tests override it.
var shutdownTimeout = 10 * time.Second
