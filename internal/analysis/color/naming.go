package color

var webColorNames = map[string]string{
	"#000000": "Black",
	"#FFFFFF": "White",
	"#FF0000": "Red",
	"#00FF00": "Green",
	"#0000FF": "Blue",
	"#FFFF00": "Yellow",
	"#FF00FF": "Magenta",
	"#00FFFF": "Cyan",
	"#808080": "Gray",
	"#C0C0C0": "Silver",
	"#800000": "Maroon",
	"#808000": "Olive",
	"#008000": "Dark Green",
	"#800080": "Purple",
	"#008080": "Teal",
	"#000080": "Navy",
}

// HueRule maps a dominant-channel pattern to a hue label.
type HueRule struct {
	Hue   string
	Match func(f Features) bool
}

// HueRules are evaluated in order; the last rule always matches.
var HueRules = []HueRule{
	{Hue: "Orange", Match: func(f Features) bool { return redDominant(f) && f.G > f.B }},
	{Hue: "Pink", Match: func(f Features) bool { return redDominant(f) && f.B > f.G }},
	{Hue: "Red", Match: redDominant},
	{Hue: "Yellow-Green", Match: func(f Features) bool { return greenDominant(f) && f.R > f.B }},
	{Hue: "Cyan", Match: func(f Features) bool { return greenDominant(f) && f.B > f.R }},
	{Hue: "Green", Match: greenDominant},
	{Hue: "Purple", Match: func(f Features) bool { return f.R > f.G }},
	{Hue: "Teal", Match: func(f Features) bool { return f.G > f.R }},
	{Hue: "Blue", Match: func(Features) bool { return true }},
}

// LightnessBand prefixes or replaces a name based on HSL lightness.
type LightnessBand struct {
	Label string
	Match func(l float64) bool
}

var grayBands = []LightnessBand{
	{Label: "Near Black", Match: func(l float64) bool { return l < 0.2 }},
	{Label: "Near White", Match: func(l float64) bool { return l > 0.8 }},
	{Label: "Gray", Match: func(float64) bool { return true }},
}

var huePrefixes = []LightnessBand{
	{Label: "Dark ", Match: func(l float64) bool { return l < 0.3 }},
	{Label: "Light ", Match: func(l float64) bool { return l > 0.7 }},
	{Label: "", Match: func(float64) bool { return true }},
}

// Name returns a human-readable name for an upper-case #RRGGBB color.
func Name(hex string) string {
	if name, ok := webColorNames[hex]; ok {
		return name
	}
	rgb, err := HexToRGB(hex)
	if err != nil {
		return "Custom"
	}
	return nameFor(NewFeatures(rgb, 0))
}

func nameFor(f Features) string {
	if f.Achromatic() {
		return firstBand(grayBands, f.Lightness)
	}
	hue := ""
	for _, rule := range HueRules {
		if rule.Match(f) {
			hue = rule.Hue
			break
		}
	}
	return firstBand(huePrefixes, f.Lightness) + hue
}

func firstBand(bands []LightnessBand, l float64) string {
	for _, b := range bands {
		if b.Match(l) {
			return b.Label
		}
	}
	return ""
}

func redDominant(f Features) bool   { return f.R >= f.G && f.R >= f.B }
func greenDominant(f Features) bool { return f.G >= f.R && f.G >= f.B }
