// Package collyfetcher implements a lightweight reachability probe using gocolly.
// It runs before a browser is launched so dead hosts fail fast.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// ErrUnreachable reports a transport-level failure (DNS, connect, TLS).
// HTTP error statuses are not failures; the browser still renders the page.
var ErrUnreachable = errors.New("target unreachable")

const maxProbeBody = 64 * 1024

// Config controls probe behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Result describes the probed response.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Duration    time.Duration
	Retries     int
}

// Prober issues a single GET to check that a URL is reachable.
type Prober struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Prober.
func New(cfg Config) *Prober {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = true
	c.ParseHTTPErrorResponse = true
	c.MaxBodySize = maxProbeBody

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Prober{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Probe fetches url once. It returns ErrUnreachable when no HTTP response
// could be obtained.
func (p *Prober) Probe(ctx context.Context, url string) (Result, error) {
	var (
		result   Result
		probeErr error
	)
	start := time.Now()
	collector, state := p.buildCollector(start, &result, &probeErr)
	result.URL = url

	if err := p.runCollector(ctx, collector, url, &probeErr); err != nil {
		return Result{}, err
	}
	result.Retries = state.retries
	return result, nil
}

func (p *Prober) buildCollector(start time.Time, result *Result, probeErr *error) (*colly.Collector, *retryState) {
	collector := p.baseCollector.Clone()
	collector.ParseHTTPErrorResponse = true
	collector.MaxBodySize = maxProbeBody
	if p.cfg.UserAgent != "" {
		collector.UserAgent = p.cfg.UserAgent
	}
	timeout := p.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	base := p.transport
	if base == nil {
		base = newHTTPTransport()
	}
	state := &retryState{}
	collector.WithTransport(&retryTransport{base: base, state: state})

	p.configureCollectorHooks(collector, start, result, probeErr)
	return collector, state
}

func (p *Prober) configureCollectorHooks(hooks collectorHooks, start time.Time, result *Result, probeErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		result.FinalURL = r.Request.URL.String()
		result.StatusCode = r.StatusCode
		if r.Headers != nil {
			result.ContentType = r.Headers.Get("Content-Type")
		}
		result.Duration = time.Since(start)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			result.StatusCode = r.StatusCode
			return
		}
		*probeErr = err
	})
}

func (p *Prober) runCollector(ctx context.Context, collector *colly.Collector, url string, probeErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("probe canceled: %w", ctx.Err())
	case err := <-done:
		if *probeErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnreachable, url, *probeErr)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnreachable, url, err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
