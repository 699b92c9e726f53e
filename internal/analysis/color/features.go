package color

import "github.com/JakeFAU/style-guide-generator/internal/styleguide"

// Features are the derived channel statistics every naming and role rule
// reads. They are computed once per color so rules stay pure predicates.
type Features struct {
	R, G, B  int
	Max, Min int
	// Lightness is the HSL lightness (max+min)/2/255.
	Lightness float64
	// Brightness is the mean channel value /255.
	Brightness float64
	// Saturation is (max-min)/255.
	Saturation float64
	Rank       int
}

// NewFeatures derives Features for rgb at the given rank.
func NewFeatures(rgb styleguide.RGB, rank int) Features {
	hi := max(rgb.R, rgb.G, rgb.B)
	lo := min(rgb.R, rgb.G, rgb.B)
	return Features{
		R:          rgb.R,
		G:          rgb.G,
		B:          rgb.B,
		Max:        hi,
		Min:        lo,
		Lightness:  float64(hi+lo) / 2 / 255,
		Brightness: float64(rgb.R+rgb.G+rgb.B) / 3 / 255,
		Saturation: float64(hi-lo) / 255,
		Rank:       rank,
	}
}

// Achromatic reports whether all channels are equal.
func (f Features) Achromatic() bool {
	return f.Max == f.Min
}

// NearGray reports whether every pairwise channel difference is below 20.
func (f Features) NearGray() bool {
	return absInt(f.R-f.G) < 20 && absInt(f.G-f.B) < 20 && absInt(f.R-f.B) < 20
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
