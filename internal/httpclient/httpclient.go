package httpclient

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultConnectTimeout bounds dialing the upstream; slow IPTV panels
	// routinely take several seconds to answer.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultTimeout bounds a whole request. Playlist and guide bodies can
	// run to hundreds of megabytes, so this is generous.
	DefaultTimeout         = 120 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
	MaxIdleConnsPerHost    = 16
)

var defaultClient *http.Client

func init() {
	defaultClient = newClient(DefaultConnectTimeout, DefaultTimeout)
}

func newClient(connect, overall time.Duration) *http.Client {
	return &http.Client{
		Timeout: overall,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			ResponseHeaderTimeout: connect,
		},
	}
}

// Default returns the shared tuned HTTP client for playlist, guide and panel
// requests.
func Default() *http.Client {
	return defaultClient
}

// WithTimeouts returns a client with the given connect and overall timeouts
// and its own transport.
func WithTimeouts(connect, overall time.Duration) *http.Client {
	if connect <= 0 {
		connect = DefaultConnectTimeout
	}
	if overall <= 0 {
		overall = DefaultTimeout
	}
	return newClient(connect, overall)
}
