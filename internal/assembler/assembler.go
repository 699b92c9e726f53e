// Package assembler combines harvested signals and analysis results into a
// StyleGuideData record.
package assembler

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/JakeFAU/style-guide-generator/internal/analysis/color"
	"github.com/JakeFAU/style-guide-generator/internal/analysis/contrast"
	"github.com/JakeFAU/style-guide-generator/internal/analysis/typography"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// GuideVersion is stamped into every generated record.
const GuideVersion = "1.0"

// Input gathers everything the assembler needs for one page.
type Input struct {
	URL        string
	Metadata   styleguide.PageMetadata
	Raw        styleguide.RawStyles
	AnalyzedAt time.Time
}

// Analysis holds the intermediate token results so callers can report stage
// progress between steps.
type Analysis struct {
	Colors     []styleguide.Color
	Palette    styleguide.ColorPalette
	Typography styleguide.Typography
}

// AnalyzeColors runs the color classifier and bucketing.
func AnalyzeColors(raw styleguide.RawStyles) ([]styleguide.Color, styleguide.ColorPalette) {
	colors := color.Classify(raw.Colors)
	return colors, color.Buckets(colors)
}

// AnalyzeTypography runs the typography analyzer.
func AnalyzeTypography(raw styleguide.RawStyles) styleguide.Typography {
	return typography.Analyze(raw)
}

// Build assembles the full record. It never fails on empty signals; every
// section falls back to defaults.
func Build(in Input) (styleguide.StyleGuideData, error) {
	colors, palette := AnalyzeColors(in.Raw)
	return Compose(in, Analysis{Colors: colors, Palette: palette, Typography: AnalyzeTypography(in.Raw)})
}

// Compose assembles the record from precomputed analysis.
func Compose(in Input, a Analysis) (styleguide.StyleGuideData, error) {
	domain, err := Domain(in.URL)
	if err != nil {
		return styleguide.StyleGuideData{}, err
	}
	brand := BrandName(in.Metadata, domain)
	description := strings.TrimSpace(in.Metadata.Description)
	if description == "" {
		description = fmt.Sprintf("Brand and design style guide for %s", domain)
	}
	analyzedAt := in.AnalyzedAt.UTC()

	tokens := tokensFrom(a.Palette)
	data := styleguide.StyleGuideData{
		Meta: styleguide.Meta{
			URL:        in.URL,
			Domain:     domain,
			Title:      brand + " Style Guide",
			AnalyzedAt: analyzedAt.Format(time.RFC3339Nano),
			Version:    GuideVersion,
		},
		Brand: styleguide.Brand{
			Name:                 brand,
			Description:          description,
			MissionStatement:     fmt.Sprintf("Deliver outstanding digital experiences through %s.", domain),
			VisionStatement:      fmt.Sprintf("%s as the benchmark for thoughtful, consistent design.", brand),
			StrategicPositioning: fmt.Sprintf("%s is positioned as a leader in high-quality, user-centered digital products.", brand),
		},
		DesignPrinciples: designPrinciples(),
		Logo:             logoSection(tokens),
		Colors:           a.Palette,
		Typography:       a.Typography,
		Iconography:      iconographySection(),
		Imagery:          imagerySection(),
		ContentStyle:     contentStyleSection(),
		UIComponents:     uiComponentsSection(tokens),
		Layout:           layoutSection(),
		Accessibility:    accessibilitySection(a.Palette, tokens),
		Resources:        resourcesSection(a.Typography),
		Changelog: []styleguide.ChangelogEntry{{
			Version: GuideVersion,
			Date:    analyzedAt.Format(time.DateOnly),
			Changes: "Initial release covering brand identity, color palette, typography, UI components and accessibility.",
		}},
	}
	return data, nil
}

// Domain returns the URL host with a leading "www." removed.
func Domain(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: url %q has no host", styleguide.ErrInvalidInput, raw)
	}
	return strings.TrimPrefix(strings.ToLower(host), "www."), nil
}

// BrandName prefers og:site_name, then the page title, then the capitalized
// first label of the domain.
func BrandName(meta styleguide.PageMetadata, domain string) string {
	if s := strings.TrimSpace(meta.SiteName); s != "" {
		return s
	}
	if s := strings.TrimSpace(meta.Title); s != "" {
		return s
	}
	label, _, _ := strings.Cut(domain, ".")
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

type tokens struct {
	primary string
	accent  string
}

func tokensFrom(p styleguide.ColorPalette) tokens {
	t := tokens{primary: color.DefaultInfoHex, accent: color.DefaultInfoHex}
	if len(p.Primary) > 0 {
		t.primary = p.Primary[0].Hex
	}
	if len(p.Secondary) > 0 {
		t.accent = p.Secondary[0].Hex
	}
	return t
}

func accessibilitySection(p styleguide.ColorPalette, t tokens) styleguide.Accessibility {
	return styleguide.Accessibility{
		ContrastPairs: contrast.Evaluate(p.Primary, p.Text),
		KeyboardNav: []string{
			"Every interactive element is reachable with the Tab key",
			"Focus order follows the visual reading order",
			fmt.Sprintf("Focus indicators are clearly visible (2px ring, %s)", t.primary),
			"Escape closes modals and dropdowns",
		},
		ScreenReader: []string{
			"Images carry descriptive alt text",
			"Form fields have associated labels",
			"ARIA landmarks describe page regions",
			"Live regions announce dynamic content changes",
		},
		VisualDesign: []string{
			"Color is never the only carrier of meaning",
			"Text scales to 200% without loss of function",
			"Links are distinguishable from surrounding text",
			"Touch targets measure at least 44x44px",
		},
		Motion: []string{
			"Honor the prefers-reduced-motion setting",
			"Nothing flashes more than three times per second",
			"Animations can be paused or disabled",
		},
	}
}
