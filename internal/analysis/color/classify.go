package color

import (
	"sort"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

const (
	black = "#000000"
	white = "#FFFFFF"

	// MaxColors caps the ranked output.
	MaxColors = 20
)

type tally struct {
	hex   string
	count int
}

// Classify parses, ranks, names and assigns roles to raw CSS colors. Black and
// white are always present with weight 1. The result is deterministic for a
// given multiset of inputs.
func Classify(raw []string) []styleguide.Color {
	counts := make(map[string]int)
	for _, r := range raw {
		hex, ok := Parse(r)
		if !ok || hex == black || hex == white {
			continue
		}
		counts[hex]++
	}
	counts[black] = 1
	counts[white] = 1

	ranked := make([]tally, 0, len(counts))
	for hex, n := range counts {
		ranked = append(ranked, tally{hex: hex, count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if ab, bb := isBaseline(a.hex), isBaseline(b.hex); ab != bb {
			return bb
		}
		return a.hex < b.hex
	})
	if len(ranked) > MaxColors {
		ranked = ranked[:MaxColors]
	}

	out := make([]styleguide.Color, 0, len(ranked))
	for i, t := range ranked {
		rgb, err := HexToRGB(t.hex)
		if err != nil {
			continue
		}
		f := NewFeatures(rgb, i)
		role, usage := Role(f)
		out = append(out, styleguide.Color{
			Hex:   t.hex,
			RGB:   rgb,
			Name:  Name(t.hex),
			Role:  role,
			Usage: usage,
		})
	}
	return out
}

func isBaseline(hex string) bool {
	return hex == black || hex == white
}
