// Package transport owns the HTTP clients used to reach the local runtime.
// Chat traffic shares one pooled client for the life of the process. Status
// probes use a separate client with a short deadline.
package transport

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// MaxIdleConnsPerHost caps idle keep-alive connections to one runtime.
	MaxIdleConnsPerHost = 5

	// ResponseHeaderTimeout bounds the wait for response headers. Bodies are
	// unbounded so long streams are never cut off.
	ResponseHeaderTimeout = 60 * time.Second

	// RequestTimeout is the whole-request deadline for non-streaming calls.
	RequestTimeout = 60 * time.Second

	// HealthTimeout is the whole-request deadline for status probes.
	HealthTimeout = 5 * time.Second

	dialTimeout     = 10 * time.Second
	idleConnTimeout = 90 * time.Second
)

var (
	sharedOnce   sync.Once
	sharedClient *http.Client

	healthOnce   sync.Once
	healthClient *http.Client
)

// Shared returns the process-wide pooled client. It is created on first use
// and safe for concurrent use.
func Shared() *http.Client {
	sharedOnce.Do(func() {
		sharedClient = &http.Client{Transport: newTransport()}
	})
	return sharedClient
}

// Health returns the client used for status probes.
func Health() *http.Client {
	healthOnce.Do(func() {
		healthClient = &http.Client{
			Transport: newTransport(),
			Timeout:   HealthTimeout,
		}
	})
	return healthClient
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          MaxIdleConnsPerHost * 4,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		ForceAttemptHTTP2:     false,
	}
}
