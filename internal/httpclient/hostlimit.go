package httpclient

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter is a process-global per-host request pacer. All clients in the
// process share the limiter for a given host, so many goroutines refreshing
// playlists and guides from the same panel cannot hammer it and trip its
// anti-flood ban.
//
// Usage: wait before sending a request.
//
//	if err := httpclient.GlobalHostLimit.Wait(ctx, url); err != nil { ... }
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// GlobalHostLimit is the shared per-host pacer. Default: 4 requests per
// second per host with a burst of 4, across the entire process.
var GlobalHostLimit = NewHostLimiter(4, 4)

func NewHostLimiter(perSecond float64, burst int) *HostLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Wait blocks until the host's limiter grants a slot or ctx is done. rawurl
// may be a full URL; only scheme+host identify the bucket.
func (h *HostLimiter) Wait(ctx context.Context, rawurl string) error {
	return h.limiterFor(rawurl).Wait(ctx)
}

func (h *HostLimiter) limiterFor(rawurl string) *rate.Limiter {
	host := rawurl
	if u, err := url.Parse(rawurl); err == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	h.mu.Lock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	h.mu.Unlock()
	return l
}
