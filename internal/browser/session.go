package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Outcome is the result of an advisory step.
type Outcome string

// Advisory outcomes.
const (
	OutcomeClicked Outcome = "clicked"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
	OutcomeDone    Outcome = "done"
)

// Attempt records one interstitial selector attempt.
type Attempt struct {
	Selector string
	Outcome  Outcome
	Err      string
}

// DismissReport summarizes interstitial dismissal.
type DismissReport struct {
	Attempts []Attempt
	Escape   Outcome
}

// Clicked counts successful clicks.
func (r DismissReport) Clicked() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome == OutcomeClicked {
			n++
		}
	}
	return n
}

// Session is one isolated, navigated browser tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	release     func()
	stopForward func()
	cfg         Config
	logger      *zap.Logger
	url         string
	closeOnce   sync.Once
}

// URL returns the requested URL.
func (s *Session) URL() string {
	return s.url
}

// Close tears down the browser and frees the session slot. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.stopForward()
		s.cancel()
		s.release()
	})
	return nil
}

// Evaluate runs script in the page, awaiting a returned promise, and decodes
// the JSON result into out.
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	return s.run(ctx, chromedp.Evaluate(script, out, awaitPromise))
}

// HTML returns the rendered outer HTML of the document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// DismissInterstitials tries each selector in DismissSelectors, clicking the
// first visible match, and finally presses Escape. Nothing here fails the page.
func (s *Session) DismissInterstitials(ctx context.Context) DismissReport {
	report := DismissReport{Attempts: make([]Attempt, 0, len(DismissSelectors))}
	for _, sel := range DismissSelectors {
		if ctx.Err() != nil {
			break
		}
		attempt := Attempt{Selector: sel, Outcome: OutcomeSkipped}
		var result string
		if err := s.run(ctx, chromedp.Evaluate(clickIfVisibleScript(sel), &result)); err != nil {
			attempt.Outcome = OutcomeFailed
			attempt.Err = err.Error()
		} else if result == string(OutcomeClicked) {
			attempt.Outcome = OutcomeClicked
			s.pause(ctx, s.cfg.ClickPause)
		}
		report.Attempts = append(report.Attempts, attempt)
	}

	report.Escape = OutcomeDone
	if err := s.run(ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
		report.Escape = OutcomeFailed
	} else {
		s.pause(ctx, s.cfg.EscapePause)
	}
	s.logger.Debug("interstitials processed",
		zap.Int("clicked", report.Clicked()),
		zap.String("escape", string(report.Escape)),
	)
	return report
}

// AutoScroll scrolls in fixed steps to trigger lazy content, then returns to
// the top.
func (s *Session) AutoScroll(ctx context.Context) Outcome {
	budget := time.Duration(s.cfg.ScrollMaxIterations+2)*s.cfg.ScrollInterval + 5*time.Second
	scrollCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var steps int
	script := autoScrollScript(s.cfg.ScrollStep, s.cfg.ScrollInterval, s.cfg.ScrollMaxIterations)
	if err := s.run(scrollCtx, chromedp.Evaluate(script, &steps, awaitPromise)); err != nil {
		s.logger.Debug("auto scroll failed", zap.Error(err))
		return OutcomeFailed
	}
	s.pause(ctx, s.cfg.ScrollResetPause)
	s.logger.Debug("auto scroll complete", zap.Int("steps", steps))
	return OutcomeDone
}

// run executes actions on the tab, aborting when either ctx or the tab ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("chromedp run: %w", err)
	}
	return nil
}

func (s *Session) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func clickIfVisibleScript(selector string) string {
	quoted, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return 'skipped';
  const rect = el.getBoundingClientRect();
  const style = window.getComputedStyle(el);
  if (rect.width === 0 || rect.height === 0 || style.visibility === 'hidden' || style.display === 'none') return 'skipped';
  el.click();
  return 'clicked';
})()`, quoted)
}

func autoScrollScript(step int, interval time.Duration, maxIterations int) string {
	return fmt.Sprintf(`new Promise((resolve) => {
  let total = 0;
  let count = 0;
  const timer = setInterval(() => {
    const height = document.body ? document.body.scrollHeight : 0;
    window.scrollBy(0, %d);
    total += %d;
    count++;
    if (total >= height || count >= %d) {
      clearInterval(timer);
      window.scrollTo(0, 0);
      resolve(count);
    }
  }, %d);
})`, step, step, maxIterations, interval.Milliseconds())
}
