// Package typography derives a font triad and type scale from harvested font
// signals.
package typography

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Defaults applied when nothing usable was harvested.
const (
	DefaultPrimaryFont = "Inter"
	SansFallback       = "system-ui, sans-serif"
	MonoFallback       = "Consolas, monospace"

	defaultHeavyWeight = 700
	defaultLightWeight = 400
	maxScaleSteps      = 10
	baseFontPx         = 16.0
)

// Ladder names the scale rows from largest to smallest.
var Ladder = []string{"Display", "H1", "H2", "H3", "H4", "Body Large", "Body", "Body Small", "Caption", "Code"}

// MonospaceHints are case-insensitive substrings that mark a monospace family.
// Only fonts already harvested are inspected.
var MonospaceHints = []string{"monospace", "mono", "code", "consolas", "menlo", "courier", "jetbrains"}

// FallbackScale is returned when no font size could be parsed.
var FallbackScale = []styleguide.TypeScaleItem{
	{Element: "Display", Size: "48px / 3rem", Weight: "700 (Bold)", LineHeight: "1.1", LetterSpacing: "-0.02em"},
	{Element: "H1", Size: "36px / 2.25rem", Weight: "700 (Bold)", LineHeight: "1.2", LetterSpacing: "-0.01em"},
	{Element: "H2", Size: "28px / 1.75rem", Weight: "600 (Semi-Bold)", LineHeight: "1.3", LetterSpacing: "0"},
	{Element: "H3", Size: "22px / 1.375rem", Weight: "600 (Semi-Bold)", LineHeight: "1.4", LetterSpacing: "0"},
	{Element: "Body", Size: "16px / 1rem", Weight: "400 (Regular)", LineHeight: "1.6", LetterSpacing: "0"},
	{Element: "Small", Size: "14px / 0.875rem", Weight: "400 (Regular)", LineHeight: "1.5", LetterSpacing: "0"},
}

var (
	leadingFloat = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)`)
	leadingInt   = regexp.MustCompile(`^\s*[-+]?\d+`)
)

// Analyze builds the Typography section from raw harvested styles.
func Analyze(raw styleguide.RawStyles) styleguide.Typography {
	fonts := usableFonts(raw.Fonts)

	out := styleguide.Typography{
		PrimaryFont: styleguide.FontFamily{Name: DefaultPrimaryFont, Fallback: SansFallback, Category: styleguide.FontPrimary},
	}
	if len(fonts) > 0 {
		out.PrimaryFont.Name = fonts[0]
	}
	if len(fonts) > 1 {
		out.SecondaryFont = &styleguide.FontFamily{Name: fonts[1], Fallback: SansFallback, Category: styleguide.FontSecondary}
	}
	if mono, ok := findMonospace(fonts); ok {
		out.MonospaceFont = &styleguide.FontFamily{Name: mono, Fallback: MonoFallback, Category: styleguide.FontMonospace}
	}

	out.Scale = buildScale(uniqueSizes(raw.FontSizes), uniqueWeights(raw.FontWeights))
	if len(out.Scale) == 0 {
		out.Scale = append([]styleguide.TypeScaleItem(nil), FallbackScale...)
	}
	return out
}

func usableFonts(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f == "" || f == "inherit" || f == "initial" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func findMonospace(fonts []string) (string, bool) {
	for _, f := range fonts {
		lower := strings.ToLower(f)
		for _, hint := range MonospaceHints {
			if strings.Contains(lower, hint) {
				return f, true
			}
		}
	}
	return "", false
}

func uniqueSizes(raw []string) []int {
	seen := make(map[int]struct{})
	sizes := make([]int, 0, len(raw))
	for _, s := range raw {
		m := leadingFloat.FindString(s)
		if m == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
		if err != nil || math.IsNaN(v) || v <= 0 {
			continue
		}
		px := int(math.Round(v))
		if _, ok := seen[px]; ok {
			continue
		}
		seen[px] = struct{}{}
		sizes = append(sizes, px)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	if len(sizes) > maxScaleSteps {
		sizes = sizes[:maxScaleSteps]
	}
	return sizes
}

func uniqueWeights(raw []string) []int {
	seen := make(map[int]struct{})
	weights := make([]int, 0, len(raw))
	for _, w := range raw {
		m := leadingInt.FindString(w)
		if m == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		weights = append(weights, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(weights)))
	return weights
}

func buildScale(sizes, weights []int) []styleguide.TypeScaleItem {
	heavy, light := defaultHeavyWeight, defaultLightWeight
	if len(weights) > 0 {
		heavy = weights[0]
		light = weights[len(weights)-1]
	}
	scale := make([]styleguide.TypeScaleItem, 0, len(sizes))
	for i, px := range sizes {
		weight := light
		lineHeight := "1.6"
		if i < 4 {
			weight = heavy
			lineHeight = "1.2"
		}
		spacing := "0"
		if i < 2 {
			spacing = "-0.02em"
		}
		scale = append(scale, styleguide.TypeScaleItem{
			Element:       Ladder[i],
			Size:          FormatSize(px),
			Weight:        fmt.Sprintf("%d (%s)", weight, WeightName(weight)),
			LineHeight:    lineHeight,
			LetterSpacing: spacing,
		})
	}
	return scale
}

// FormatSize renders "Npx / Mrem" with up to three rem decimals, halves
// rounded up.
func FormatSize(px int) string {
	rem := math.Round(float64(px)/baseFontPx*1000) / 1000
	return fmt.Sprintf("%dpx / %srem", px, strconv.FormatFloat(rem, 'f', -1, 64))
}

// WeightName labels a numeric font weight.
func WeightName(weight int) string {
	switch {
	case weight >= 700:
		return "Bold"
	case weight >= 600:
		return "Semi-Bold"
	case weight >= 500:
		return "Medium"
	default:
		return "Regular"
	}
}
