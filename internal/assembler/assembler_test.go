package assembler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func TestDomain(t *testing.T) {
	t.Parallel()

	d, err := Domain("https://www.Example.com/path?q=1")
	require.NoError(t, err)
	require.Equal(t, "example.com", d)

	d, err = Domain("http://docs.example.org:8080")
	require.NoError(t, err)
	require.Equal(t, "docs.example.org", d)

	_, err = Domain("not a url")
	require.ErrorIs(t, err, styleguide.ErrInvalidInput)
}

func TestBrandName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Acme", BrandName(styleguide.PageMetadata{SiteName: "Acme", Title: "Home"}, "acme.io"))
	require.Equal(t, "Home | Acme", BrandName(styleguide.PageMetadata{Title: "Home | Acme"}, "acme.io"))
	require.Equal(t, "Example", BrandName(styleguide.PageMetadata{}, "example.com"))
}

func TestBuildExampleDotCom(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	data, err := Build(Input{
		URL:        "https://example.com",
		Metadata:   styleguide.PageMetadata{Title: "Example Domain"},
		Raw:        styleguide.RawStyles{Colors: []string{"#0D91FD", "#0D91FD", "rgb(56, 72, 143)"}, Fonts: []string{"Arial"}},
		AnalyzedAt: at,
	})
	require.NoError(t, err)
	require.Equal(t, "example.com", data.Meta.Domain)
	require.Equal(t, "Example Domain Style Guide", data.Meta.Title)
	require.Equal(t, GuideVersion, data.Meta.Version)
	require.Equal(t, "2026-03-04T05:06:07Z", data.Meta.AnalyzedAt)
	require.Equal(t, "Brand and design style guide for example.com", data.Brand.Description)
	require.Equal(t, "2026-03-04", data.Changelog[0].Date)
	require.Equal(t, "Arial", data.Typography.PrimaryFont.Name)
	require.Equal(t, "#0D91FD", data.Colors.Primary[0].Hex)
	require.Equal(t, "#0D91FD", data.UIComponents.Buttons.Variants[0].Background)
	require.Equal(t, "Teal (#0D91FD) on White", data.Accessibility.ContrastPairs[0].Combination)
	require.Equal(t, "3.2:1", data.Accessibility.ContrastPairs[0].Ratio)
	require.Len(t, data.Layout.Spacing, 10)
	require.Equal(t, "64px", data.Layout.Spacing[9].Value)
	require.NotEmpty(t, data.DesignPrinciples)
	require.NotEmpty(t, data.Resources)
}

func TestBuildEmptySignals(t *testing.T) {
	t.Parallel()

	data, err := Build(Input{URL: "https://www.blank.dev", AnalyzedAt: time.Unix(0, 0)})
	require.NoError(t, err)
	require.Equal(t, "Blank", data.Brand.Name)
	require.NotEmpty(t, data.Colors.Primary)
	require.NotEmpty(t, data.Colors.Text)
	require.NotEmpty(t, data.Colors.Background)
	require.Len(t, data.Typography.Scale, 6)
	require.NotEmpty(t, data.Accessibility.ContrastPairs)
}

func TestBuildJSONUsesCamelCase(t *testing.T) {
	t.Parallel()

	data, err := Build(Input{URL: "https://example.com", AnalyzedAt: time.Unix(0, 0)})
	require.NoError(t, err)
	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "contentStyle")
	require.Contains(t, decoded, "uiComponents")
	typo, ok := decoded["typography"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, typo, "primaryFont")
	access, ok := decoded["accessibility"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, access, "contrastPairs")
}
