package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

type fakeEvaluator struct {
	payload string
	err     error
	script  string
}

func (f *fakeEvaluator) Evaluate(_ context.Context, script string, out any) error {
	f.script = script
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func TestHarvestDedupes(t *testing.T) {
	t.Parallel()

	ev := &fakeEvaluator{payload: `{
		"colors": ["rgb(0, 0, 0)", "#0d91fd", "rgb(0, 0, 0)"],
		"fonts": ["Inter", "Inter", "Menlo"],
		"fontSizes": ["16px", "16px", "32px"],
		"fontWeights": ["400", "700", "400"],
		"spacing": ["8px", "8px 16px"],
		"skippedSheets": 2
	}`}
	got, err := New(zap.NewNop()).Harvest(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, []string{"rgb(0, 0, 0)", "#0d91fd"}, got.Colors)
	require.Equal(t, []string{"Inter", "Menlo"}, got.Fonts)
	require.Equal(t, []string{"16px", "32px"}, got.FontSizes)
	require.Equal(t, []string{"400", "700"}, got.FontWeights)
	require.Equal(t, []string{"8px", "8px 16px"}, got.Spacing)
	require.Equal(t, 2, got.SkippedSheets)
	require.Equal(t, Script(), ev.script)
}

func TestHarvestPropagatesEvaluateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("target closed")
	_, err := New(nil).Harvest(context.Background(), &fakeEvaluator{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestHarvestEmptyPage(t *testing.T) {
	t.Parallel()

	got, err := New(nil).Harvest(context.Background(), &fakeEvaluator{payload: `{}`})
	require.NoError(t, err)
	require.Equal(t, styleguide.RawStyles{
		Colors: []string{}, Fonts: []string{}, FontSizes: []string{}, FontWeights: []string{}, Spacing: []string{},
	}, got)
}

func TestScriptCoversSignals(t *testing.T) {
	t.Parallel()

	s := Script()
	for _, needle := range []string{"border-left-color", "getComputedStyle", "CSSStyleRule", "skippedSheets", "'gap'"} {
		require.True(t, strings.Contains(s, needle), needle)
	}
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<title> Example Domain </title>
		<meta name="description" content="An example site">
		<meta property="og:site_name" content="Example">
	</head><body></body></html>`
	meta, err := Metadata(html)
	require.NoError(t, err)
	require.Equal(t, styleguide.PageMetadata{Title: "Example Domain", Description: "An example site", SiteName: "Example"}, meta)

	meta, err = Metadata("<html><body>no head</body></html>")
	require.NoError(t, err)
	require.Equal(t, styleguide.PageMetadata{}, meta)
}
