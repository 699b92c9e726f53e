// Package color ranks raw CSS color strings and labels them with names and
// semantic roles.
package color

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

var (
	hexPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbPattern = regexp.MustCompile(`^rgba?\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)
)

// Parse canonicalizes a raw CSS color to upper-case #RRGGBB. Only 3/6-digit
// hex literals and rgb()/rgba() with integer channels are accepted.
func Parse(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "#") {
		if !hexPattern.MatchString(s) {
			return "", false
		}
		c, err := colorful.Hex(expandShortHex(s))
		if err != nil {
			return "", false
		}
		r, g, b := c.RGB255()
		return RGBToHex(int(r), int(g), int(b)), true
	}
	m := rgbPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	channels := [3]int{}
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return "", false
		}
		channels[i] = v
	}
	return RGBToHex(channels[0], channels[1], channels[2]), true
}

// HexToRGB decodes a #RRGGBB string.
func HexToRGB(hex string) (styleguide.RGB, error) {
	if !hexPattern.MatchString(hex) || len(hex) != 7 {
		return styleguide.RGB{}, fmt.Errorf("not a 6-digit hex color: %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return styleguide.RGB{}, fmt.Errorf("decode hex %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return styleguide.RGB{R: int(r), G: int(g), B: int(b)}, nil
}

// RGBToHex encodes channels as upper-case #RRGGBB.
func RGBToHex(r, g, b int) string {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	return strings.ToUpper(c.Hex())
}

// MustColor builds a Color from a known-good hex literal.
func MustColor(hex, name, role, usage string) styleguide.Color {
	rgb, err := HexToRGB(hex)
	if err != nil {
		panic(err)
	}
	return styleguide.Color{Hex: strings.ToUpper(hex), RGB: rgb, Name: name, Role: role, Usage: usage}
}

func expandShortHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}
