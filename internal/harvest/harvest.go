// Package harvest collects raw style signals and page metadata from a rendered
// page.
package harvest

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

//go:embed harvest.js
var harvestScript string

// Script returns the in-page harvest program.
func Script() string {
	return harvestScript
}

// Evaluator runs JavaScript in a live page and decodes the result into out.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, out any) error
}

// Harvester extracts RawStyles through an Evaluator.
type Harvester struct {
	logger *zap.Logger
}

// New constructs a Harvester.
func New(logger *zap.Logger) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{logger: logger}
}

// Harvest evaluates the harvest script and returns de-duplicated signals.
// Unreadable stylesheets are counted, not reported as errors.
func (h *Harvester) Harvest(ctx context.Context, ev Evaluator) (styleguide.RawStyles, error) {
	var raw styleguide.RawStyles
	if err := ev.Evaluate(ctx, harvestScript, &raw); err != nil {
		return styleguide.RawStyles{}, fmt.Errorf("evaluate harvest script: %w", err)
	}
	out := styleguide.RawStyles{
		Colors:        dedupe(raw.Colors),
		Fonts:         dedupe(raw.Fonts),
		FontSizes:     dedupe(raw.FontSizes),
		FontWeights:   dedupe(raw.FontWeights),
		Spacing:       dedupe(raw.Spacing),
		SkippedSheets: raw.SkippedSheets,
	}
	if out.SkippedSheets > 0 {
		h.logger.Debug("partial extraction: stylesheets not readable",
			zap.Int("skipped_sheets", out.SkippedSheets))
	}
	h.logger.Debug("harvested styles",
		zap.Int("colors", len(out.Colors)),
		zap.Int("fonts", len(out.Fonts)),
		zap.Int("font_sizes", len(out.FontSizes)),
		zap.Int("font_weights", len(out.FontWeights)),
		zap.Int("spacing", len(out.Spacing)),
	)
	return out, nil
}

// Metadata reads title, description and og:site_name from rendered HTML.
func Metadata(html string) (styleguide.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return styleguide.PageMetadata{}, fmt.Errorf("parsing HTML: %w", err)
	}
	meta := styleguide.PageMetadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if v, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		meta.SiteName = strings.TrimSpace(v)
	}
	return meta, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
