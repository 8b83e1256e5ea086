package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

const acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8"

const (
	DefaultAttemptTimeout = 10 * time.Second
	DefaultProxyDelay     = 1 * time.Second
)

// DefaultProxies is the default retrieval chain. The empty prefix means a
// direct server-to-server GET; the relays re-issue the request on our behalf
// for feed servers that refuse unfamiliar origins or get rate-limited.
var DefaultProxies = []string{
	"",
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?url=",
}

// Fetcher retrieves raw feed bytes through an ordered chain of proxy
// prefixes. Attempts within one Fetch are strictly sequential; the first
// non-empty 2xx body wins and later proxies are never consulted.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	delay     time.Duration
	userAgent string

	mu      sync.Mutex
	proxies []*proxyState
}

// proxyState tracks a rolling outcome count per proxy so the chain can be
// reordered toward relays that have actually been working.
type proxyState struct {
	prefix  string
	rank    int
	success int
	failure int
}

func (p *proxyState) rate() float64 {
	// Laplace-smoothed so an untried proxy keeps its configured position.
	return float64(p.success+1) / float64(p.success+p.failure+2)
}

type FetcherConfig struct {
	Proxies        []string
	AttemptTimeout time.Duration
	Delay          time.Duration
	UserAgent      string
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	proxies := cfg.Proxies
	if len(proxies) == 0 {
		proxies = DefaultProxies
	}
	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	// Delay zero means the default; a negative value disables the pause.
	delay := cfg.Delay
	if delay == 0 {
		delay = DefaultProxyDelay
	} else if delay < 0 {
		delay = 0
	}

	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		delay:     delay,
		userAgent: cfg.UserAgent,
	}
	for i, prefix := range proxies {
		f.proxies = append(f.proxies, &proxyState{prefix: prefix, rank: i})
	}
	return f
}

// Fetch retrieves the raw bytes of feedURL, walking the proxy chain in
// priority order. Cancelling ctx aborts the remaining chain, not just the
// in-flight attempt. When every proxy fails the returned *FetchError wraps
// the most recent underlying cause.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	chain := f.orderedProxies()

	var lastErr error
	for i, p := range chain {
		// Pause between attempts so a relay that just refused us is not
		// immediately hammered again through the next prefix. The first
		// attempt goes out immediately.
		if i > 0 && f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
			}
		}
		if ctx.Err() != nil {
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			break
		}

		body, err := f.attempt(ctx, p, feedURL)
		if err != nil {
			log.Printf("feed fetch attempt %d/%d failed for %s (proxy %q): %v",
				i+1, len(chain), feedURL, p.prefix, err)
			f.record(p, false)
			lastErr = err
			continue
		}

		f.record(p, true)
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no proxies configured")
	}
	return nil, &FetchError{URL: feedURL, Err: lastErr}
}

func (f *Fetcher) attempt(ctx context.Context, p *proxyState, feedURL string) ([]byte, error) {
	target := feedURL
	if p.prefix != "" {
		target = p.prefix + url.QueryEscape(feedURL)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d (%s)", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}

	return body, nil
}

// orderedProxies snapshots the chain sorted by rolling success rate, falling
// back to configured order for ties so untried proxies keep their priority.
func (f *Fetcher) orderedProxies() []*proxyState {
	f.mu.Lock()
	defer f.mu.Unlock()

	chain := make([]*proxyState, len(f.proxies))
	copy(chain, f.proxies)
	sort.SliceStable(chain, func(i, j int) bool {
		ri, rj := chain[i].rate(), chain[j].rate()
		if ri != rj {
			return ri > rj
		}
		return chain[i].rank < chain[j].rank
	})
	return chain
}

func (f *Fetcher) record(p *proxyState, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		p.success++
	} else {
		p.failure++
	}
}
