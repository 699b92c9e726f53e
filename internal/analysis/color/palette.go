package color

import (
	"strings"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Bucket limits.
const (
	maxPrimary    = 3
	maxSecondary  = 3
	maxText       = 2
	maxBackground = 2
)

// DefaultInfoHex is used for the info color when no primary color exists.
const DefaultInfoHex = "#0D91FD"

var (
	fallbackText       = MustColor("#374151", "Gray Dark", RoleTextPrimary, "Body text")
	fallbackBackground = MustColor("#FFFFFF", "White", RoleBackground, "Main background")
	fallbackSuccess    = MustColor("#10B981", "Green", RoleSuccess, "Success states")
	fallbackWarning    = MustColor("#F59E0B", "Amber", RoleWarning, "Warnings")
	fallbackError      = MustColor("#EF4444", "Red", RoleError, "Errors")
	fallbackPrimary    = MustColor(DefaultInfoHex, "Blue", RolePrimaryAccent, "CTAs, links, interactive elements")
)

// Buckets groups classified colors into the palette view.
func Buckets(colors []styleguide.Color) styleguide.ColorPalette {
	p := styleguide.ColorPalette{
		Primary:    pick(colors, maxPrimary, "Primary", "Dark"),
		Secondary:  pick(colors, maxSecondary, "Accent", "Light"),
		Text:       pick(colors, maxText, "Text"),
		Background: pick(colors, maxBackground, "Background"),
	}
	if len(p.Primary) == 0 {
		p.Primary = window(colors, 0, 2)
	}
	if len(p.Secondary) == 0 {
		p.Secondary = window(colors, 2, 4)
	}
	if len(p.Primary) == 0 {
		p.Primary = []styleguide.Color{fallbackPrimary}
	}
	if len(p.Text) == 0 {
		p.Text = []styleguide.Color{fallbackText}
	}
	if len(p.Background) == 0 {
		p.Background = []styleguide.Color{fallbackBackground}
	}

	p.System = styleguide.SystemColors{
		Success: byRole(colors, RoleSuccess, fallbackSuccess),
		Warning: byRole(colors, RoleWarning, fallbackWarning),
		Error:   byRole(colors, RoleError, fallbackError),
	}
	lead := p.Primary[0]
	p.System.Info = &styleguide.Color{Hex: lead.Hex, RGB: lead.RGB, Name: "Info", Role: "Info", Usage: "Information"}
	return p
}

func pick(colors []styleguide.Color, limit int, needles ...string) []styleguide.Color {
	out := make([]styleguide.Color, 0, limit)
	for _, c := range colors {
		if len(out) == limit {
			break
		}
		for _, n := range needles {
			if strings.Contains(c.Role, n) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func window(colors []styleguide.Color, from, to int) []styleguide.Color {
	if from >= len(colors) {
		return nil
	}
	if to > len(colors) {
		to = len(colors)
	}
	out := make([]styleguide.Color, to-from)
	copy(out, colors[from:to])
	return out
}

func byRole(colors []styleguide.Color, role string, fallback styleguide.Color) *styleguide.Color {
	for _, c := range colors {
		if c.Role == role {
			found := c
			return &found
		}
	}
	fb := fallback
	return &fb
}
