// Package contrast computes WCAG 2.x contrast ratios for palette colors.
package contrast

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Status labels.
const (
	StatusAAA       = "AAA Pass"
	StatusAA        = "AA Pass"
	StatusAALarge   = "AA Large Text"
	StatusFail      = "Fail"
	thresholdAAA    = 7.0
	thresholdAA     = 4.5
	thresholdLarge  = 3.0
	whiteName       = "White"
	whiteHex        = "#FFFFFF"
	luminanceOffset = 0.05
)

var white = styleguide.Color{Hex: whiteHex, RGB: styleguide.RGB{R: 255, G: 255, B: 255}, Name: whiteName}

// Luminance returns the WCAG relative luminance of rgb. colorful's sRGB
// linearization agrees with the 0.03928 cutoff for every 8-bit channel value.
func Luminance(rgb styleguide.RGB) float64 {
	r, g, b := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Ratio returns the contrast ratio of two colors, in [1, 21].
func Ratio(a, b styleguide.RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + luminanceOffset) / (lb + luminanceOffset)
}

// Status classifies an unrounded ratio.
func Status(ratio float64) string {
	switch {
	case ratio >= thresholdAAA:
		return StatusAAA
	case ratio >= thresholdAA:
		return StatusAA
	case ratio >= thresholdLarge:
		return StatusAALarge
	default:
		return StatusFail
	}
}

// FormatRatio renders a ratio as "X.X:1".
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("%.1f:1", ratio)
}

// Pair evaluates fg on bg under the given label.
func Pair(label string, fg, bg styleguide.RGB) styleguide.ContrastPair {
	r := Ratio(fg, bg)
	return styleguide.ContrastPair{Combination: label, Ratio: FormatRatio(r), Status: Status(r)}
}

// Evaluate reports each primary on white, each text color on white, then white
// on each primary, in that order.
func Evaluate(primary, text []styleguide.Color) []styleguide.ContrastPair {
	out := make([]styleguide.ContrastPair, 0, 2*len(primary)+len(text))
	for _, c := range primary {
		out = append(out, Pair(onWhite(c), c.RGB, white.RGB))
	}
	for _, c := range text {
		out = append(out, Pair(onWhite(c), c.RGB, white.RGB))
	}
	for _, c := range primary {
		out = append(out, Pair(fmt.Sprintf("%s on %s (%s)", whiteName, c.Name, c.Hex), white.RGB, c.RGB))
	}
	return out
}

func onWhite(c styleguide.Color) string {
	return fmt.Sprintf("%s (%s) on %s", c.Name, c.Hex, whiteName)
}
