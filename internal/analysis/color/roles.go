package color

// Role names.
const (
	RolePrimaryDark   = "Primary Dark"
	RoleBackground    = "Background"
	RoleTextPrimary   = "Text Primary"
	RoleTextSecondary = "Text Secondary"
	RoleError         = "Error"
	RoleSuccess       = "Success"
	RoleWarning       = "Warning"
	RolePrimaryAccent = "Primary Accent"
	RoleLightAccent   = "Light Accent"
	RoleAccent        = "Accent"
)

// RoleRule assigns a semantic role when Match holds.
type RoleRule struct {
	Role  string
	Usage string
	Match func(f Features) bool
}

// RoleRules are evaluated top to bottom and the first match wins. The final
// rule always matches.
var RoleRules = []RoleRule{
	{
		Role:  RolePrimaryDark,
		Usage: "Headers, footers, primary backgrounds",
		Match: func(f Features) bool { return f.Brightness < 0.15 },
	},
	{
		Role:  RoleBackground,
		Usage: "Page backgrounds, card backgrounds",
		Match: func(f Features) bool { return f.Brightness > 0.9 },
	},
	{
		Role:  RoleTextPrimary,
		Usage: "Body text, primary content",
		Match: func(f Features) bool { return f.NearGray() && f.Brightness < 0.5 },
	},
	{
		Role:  RoleTextSecondary,
		Usage: "Secondary text, captions",
		Match: Features.NearGray,
	},
	{
		Role:  RoleError,
		Usage: "Error states, destructive actions",
		Match: func(f Features) bool { return saturated(f) && f.R > 200 && f.G < 100 && f.B < 100 },
	},
	{
		Role:  RoleSuccess,
		Usage: "Success states, confirmations",
		Match: func(f Features) bool { return saturated(f) && f.G > 150 && f.R < 100 && f.B < 100 },
	},
	{
		Role:  RoleWarning,
		Usage: "Warnings, cautions",
		Match: func(f Features) bool { return saturated(f) && f.R > 200 && f.G > 150 && f.B < 100 },
	},
	{
		Role:  RolePrimaryAccent,
		Usage: "CTAs, links, interactive elements",
		Match: func(f Features) bool { return saturated(f) && f.B > 150 && f.Rank < 3 },
	},
	{
		Role:  RoleLightAccent,
		Usage: "Hover states, highlights",
		Match: func(f Features) bool { return saturated(f) && f.B > 150 },
	},
	{
		Role:  RoleAccent,
		Usage: "Highlights, accents",
		Match: func(Features) bool { return true },
	},
}

// Role returns the role and usage for a color at the given rank.
func Role(f Features) (role, usage string) {
	for _, rule := range RoleRules {
		if rule.Match(f) {
			return rule.Role, rule.Usage
		}
	}
	return RoleAccent, "Highlights, accents"
}

func saturated(f Features) bool { return f.Saturation > 0.5 }
