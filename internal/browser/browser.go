// Package browser drives headless Chrome to a settled, rendered page state.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/policy/ratelimit"
)

// Navigation failures.
var (
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrNavigationError   = errors.New("navigation error")
)

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config controls browser sessions.
type Config struct {
	ExecPath       string
	Headless       bool
	MaxSessions    int
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	DomainQPS      float64

	NavigationTimeout time.Duration
	ReadyTimeout      time.Duration
	SettleDelay       time.Duration
	ClickPause        time.Duration
	EscapePause       time.Duration

	ScrollStep          int
	ScrollInterval      time.Duration
	ScrollMaxIterations int
	ScrollResetPause    time.Duration
}

// DefaultConfig returns the standard session timings.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		MaxSessions:         2,
		UserAgent:           DefaultUserAgent,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeout:   30 * time.Second,
		ReadyTimeout:        10 * time.Second,
		SettleDelay:         2 * time.Second,
		ClickPause:          500 * time.Millisecond,
		EscapePause:         300 * time.Millisecond,
		ScrollStep:          500,
		ScrollInterval:      200 * time.Millisecond,
		ScrollMaxIterations: 10,
		ScrollResetPause:    500 * time.Millisecond,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = d.ViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = d.ViewportHeight
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = d.NavigationTimeout
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = d.ReadyTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.ClickPause <= 0 {
		c.ClickPause = d.ClickPause
	}
	if c.EscapePause <= 0 {
		c.EscapePause = d.EscapePause
	}
	if c.ScrollStep <= 0 {
		c.ScrollStep = d.ScrollStep
	}
	if c.ScrollInterval <= 0 {
		c.ScrollInterval = d.ScrollInterval
	}
	if c.ScrollMaxIterations <= 0 {
		c.ScrollMaxIterations = d.ScrollMaxIterations
	}
	if c.ScrollResetPause <= 0 {
		c.ScrollResetPause = d.ScrollResetPause
	}
	return c
}

// Launcher owns the Chrome allocator and hands out isolated sessions.
type Launcher struct {
	cfg         Config
	logger      *zap.Logger
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	domains     *ratelimit.Limiter
}

// NewLauncher prepares an exec allocator. Chrome starts lazily on first Open.
func NewLauncher(cfg Config, logger *zap.Logger) (*Launcher, error) {
	if cfg.MaxSessions < 0 {
		return nil, fmt.Errorf("max sessions must be >= 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	var limiter chan struct{}
	if cfg.MaxSessions > 0 {
		limiter = make(chan struct{}, cfg.MaxSessions)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Launcher{
		cfg:         cfg,
		logger:      logger.Named("browser"),
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		domains:     ratelimit.New(ratelimit.Config{QPS: cfg.DomainQPS, Burst: 1}),
	}, nil
}

// Close cancels the allocator and every browser it started.
func (l *Launcher) Close() {
	l.allocCancel()
}

// Config returns the effective configuration.
func (l *Launcher) Config() Config {
	return l.cfg
}

// Open starts a fresh browser for rawURL, navigates, and waits for the page to
// settle. The returned Session must be closed by the caller.
func (l *Launcher) Open(ctx context.Context, rawURL string) (*Session, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.waitDomainBudget(ctx, rawURL); err != nil {
		release()
		return nil, fmt.Errorf("navigation rate limit: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(l.allocator)
	stopForward := forwardCancel(ctx, cancelTab)
	s := &Session{
		ctx:         tabCtx,
		cancel:      cancelTab,
		release:     release,
		stopForward: stopForward,
		cfg:         l.cfg,
		logger:      l.logger.With(zap.String("url", rawURL)),
		url:         rawURL,
	}

	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(l.cfg.ViewportWidth), int64(l.cfg.ViewportHeight))); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: start browser: %w", ErrNavigationError, err)
	}
	if err := s.navigate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (l *Launcher) acquire(ctx context.Context) (func(), error) {
	if l.limiter == nil {
		return func() {}, nil
	}
	select {
	case l.limiter <- struct{}{}:
		return func() { <-l.limiter }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("browser slot wait canceled: %w", ctx.Err())
	}
}

func (l *Launcher) waitDomainBudget(ctx context.Context, rawURL string) error {
	if l.cfg.DomainQPS <= 0 {
		return nil
	}
	if err := l.domains.Wait(ctx, rawURL); err != nil {
		return fmt.Errorf("domain budget: %w", err)
	}
	return nil
}

// navigate loads the URL and waits for DOMContentLoaded rather than network
// idle, then for body to be attached, then the settle delay.
func (s *Session) navigate(parent context.Context) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
	defer cancel()
	stop := forwardCancel(parent, cancel)
	defer stop()

	domReady := make(chan struct{})
	var once sync.Once
	chromedp.ListenTarget(navCtx, func(ev any) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			once.Do(func() { close(domReady) })
		}
	})

	err := chromedp.Run(navCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errText, _, err := page.Navigate(s.url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return errors.New(errText)
		}
		return nil
	}))
	if err != nil {
		return classifyNavError(navCtx, s.url, err)
	}

	select {
	case <-domReady:
	case <-navCtx.Done():
		return classifyNavError(navCtx, s.url, navCtx.Err())
	}

	readyCtx, cancelReady := context.WithTimeout(s.ctx, s.cfg.ReadyTimeout)
	defer cancelReady()
	stopReady := forwardCancel(parent, cancelReady)
	defer stopReady()
	if err := chromedp.Run(readyCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return classifyNavError(readyCtx, s.url, err)
	}

	if s.cfg.SettleDelay > 0 {
		select {
		case <-time.After(s.cfg.SettleDelay):
		case <-parent.Done():
			return fmt.Errorf("%w: %s: %w", ErrNavigationError, s.url, parent.Err())
		}
	}
	s.logger.Debug("page settled")
	return nil
}

func classifyNavError(ctx context.Context, rawURL string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, rawURL)
	}
	return fmt.Errorf("%w: %s: %w", ErrNavigationError, rawURL, err)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
