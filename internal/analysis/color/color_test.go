package color

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "six digit", raw: "#0d91fd", want: "#0D91FD", ok: true},
		{name: "three digit", raw: "#abc", want: "#AABBCC", ok: true},
		{name: "rgb", raw: "rgb(93, 181, 254)", want: "#5DB5FE", ok: true},
		{name: "rgba", raw: "rgba(0, 0, 0, 0.5)", want: "#000000", ok: true},
		{name: "padded", raw: "  rgb(1,2,3) ", want: "#010203", ok: true},
		{name: "four digit", raw: "#abcd", ok: false},
		{name: "bad digit", raw: "#12345G", ok: false},
		{name: "channel overflow", raw: "rgb(300, 0, 0)", ok: false},
		{name: "named", raw: "red", ok: false},
		{name: "hsl", raw: "hsl(0, 100%, 50%)", ok: false},
		{name: "empty", raw: "", ok: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.raw)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		hex := fmt.Sprintf("#%06X", rng.Intn(1<<24))
		rgb, err := HexToRGB(hex)
		require.NoError(t, err)
		require.Equal(t, hex, RGBToHex(rgb.R, rgb.G, rgb.B))
	}
	for _, hex := range []string{"#000000", "#FFFFFF", "#0D91FD", "#7F7F7F"} {
		rgb, err := HexToRGB(hex)
		require.NoError(t, err)
		require.Equal(t, hex, RGBToHex(rgb.R, rgb.G, rgb.B))
	}

	_, err := HexToRGB("#FFF")
	require.Error(t, err)
}

func TestName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"#000080": "Navy",
		"#C0C0C0": "Silver",
		"#111111": "Near Black",
		"#EEEEEE": "Near White",
		"#777777": "Gray",
		"#CC6600": "Orange",
		"#CC0066": "Pink",
		"#AA0000": "Red",
		"#0D91FD": "Teal",
		"#0000CC": "Blue",
		"#66CC00": "Yellow-Green",
		"#00CC66": "Cyan",
		"#6600CC": "Purple",
		"#0066CC": "Teal",
		"#330000": "Dark Red",
		"#FFCCCC": "Light Red",
	}
	for hex, want := range tests {
		require.Equal(t, want, Name(hex), hex)
	}
}

func TestRoleRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hex  string
		rank int
		want string
	}{
		{hex: "#000000", rank: 0, want: RolePrimaryDark},
		{hex: "#FFFFFF", rank: 0, want: RoleBackground},
		{hex: "#333333", rank: 0, want: RoleTextPrimary},
		{hex: "#AAAAAA", rank: 0, want: RoleTextSecondary},
		{hex: "#EE2222", rank: 0, want: RoleError},
		{hex: "#22CC22", rank: 0, want: RoleSuccess},
		{hex: "#EEBB11", rank: 0, want: RoleWarning},
		{hex: "#0D91FD", rank: 2, want: RolePrimaryAccent},
		{hex: "#0D91FD", rank: 3, want: RoleLightAccent},
		{hex: "#996633", rank: 0, want: RoleAccent},
	}
	for _, tt := range tests {
		rgb, err := HexToRGB(tt.hex)
		require.NoError(t, err)
		role, usage := Role(NewFeatures(rgb, tt.rank))
		require.Equal(t, tt.want, role, "%s@%d", tt.hex, tt.rank)
		require.NotEmpty(t, usage)
	}
	require.Equal(t, RoleAccent, RoleRules[len(RoleRules)-1].Role)
}

func TestClassifyScenario(t *testing.T) {
	t.Parallel()

	got := Classify([]string{"#000000", "#0D91FD", "#0D91FD", "#FFFFFF", "rgb(93,181,254)"})
	require.Len(t, got, 4)
	require.Equal(t, "#0D91FD", got[0].Hex)
	require.Equal(t, RolePrimaryAccent, got[0].Role)
	require.Equal(t, styleguide.RGB{R: 13, G: 145, B: 253}, got[0].RGB)
	require.Equal(t, "#5DB5FE", got[1].Hex)
	require.Equal(t, "#000000", got[2].Hex)
	require.Equal(t, "#FFFFFF", got[3].Hex)
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	input := []string{"#111827", "#f3f4f6", "#0d91fd", "rgb(239, 68, 68)", "#10b981", "#123", "#456", "#789"}
	first := Classify(input)
	shuffled := append([]string(nil), input...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	require.Equal(t, first, Classify(input))
	require.Equal(t, first, Classify(shuffled))
}

func TestClassifyCapsAtTwenty(t *testing.T) {
	t.Parallel()

	var raw []string
	for i := 1; i <= 40; i++ {
		raw = append(raw, fmt.Sprintf("#%02X2040", i*5))
	}
	got := Classify(raw)
	require.Len(t, got, MaxColors)
}

func TestBucketsEmptyInput(t *testing.T) {
	t.Parallel()

	p := Buckets(Classify(nil))
	require.NotEmpty(t, p.Primary)
	require.NotEmpty(t, p.Text)
	require.NotEmpty(t, p.Background)
	require.Equal(t, "#000000", p.Primary[0].Hex)
	require.Equal(t, "#374151", p.Text[0].Hex)
	require.Equal(t, "#FFFFFF", p.Background[0].Hex)
	require.Equal(t, "#10B981", p.System.Success.Hex)
	require.Equal(t, "#F59E0B", p.System.Warning.Hex)
	require.Equal(t, "#EF4444", p.System.Error.Hex)
	require.Equal(t, "#000000", p.System.Info.Hex)
}

func TestBucketsNoColorsAtAll(t *testing.T) {
	t.Parallel()

	p := Buckets(nil)
	require.Equal(t, DefaultInfoHex, p.Primary[0].Hex)
	require.Equal(t, DefaultInfoHex, p.System.Info.Hex)
	require.Empty(t, p.Secondary)
}

func TestBucketsLimitsAndSystemRoles(t *testing.T) {
	t.Parallel()

	colors := Classify([]string{
		"#0D91FD", "#0D91FD", "#0D91FD",
		"#1E90FF", "#1E90FF",
		"#EE2222", "#22CC22", "#333333", "#444444", "#555555",
	})
	p := Buckets(colors)
	require.LessOrEqual(t, len(p.Primary), 3)
	require.LessOrEqual(t, len(p.Secondary), 3)
	require.LessOrEqual(t, len(p.Text), 2)
	require.LessOrEqual(t, len(p.Background), 2)
	require.Equal(t, "#EE2222", p.System.Error.Hex)
	require.Equal(t, "#22CC22", p.System.Success.Hex)
	require.Equal(t, "#F59E0B", p.System.Warning.Hex)
	require.Equal(t, "#0D91FD", p.Primary[0].Hex)
}
