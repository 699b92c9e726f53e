package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/style-guide-generator/internal/assembler"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func exampleGuide(t *testing.T) styleguide.StyleGuideData {
	t.Helper()
	data, err := assembler.Build(assembler.Input{
		URL:        "https://example.com",
		Metadata:   styleguide.PageMetadata{Title: "Example Domain", Description: "Illustrative examples, café"},
		Raw:        styleguide.RawStyles{Colors: []string{"#0D91FD", "#0D91FD", "#38488F", "#10B981"}, Fonts: []string{"Inter", "Georgia"}},
		AnalyzedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	})
	require.NoError(t, err)
	return data
}

func TestRendererMetadata(t *testing.T) {
	t.Parallel()

	r := New()
	require.Equal(t, "application/pdf", r.ContentType())
	require.Equal(t, "pdf", r.Extension())
	require.Equal(t, "example.com-style-guide.pdf", Filename(styleguide.StyleGuideData{Meta: styleguide.Meta{Domain: "example.com"}}))
	require.Equal(t, "site-style-guide.pdf", Filename(styleguide.StyleGuideData{}))
}

func TestRenderProducesMultiPageDocument(t *testing.T) {
	t.Parallel()

	r := New()
	r.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	out, err := r.Render(exampleGuide(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	require.True(t, bytes.Contains(out, []byte("%%EOF")))
	require.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 5)
}

func TestRenderEmptyRecord(t *testing.T) {
	t.Parallel()

	out, err := New().Render(styleguide.StyleGuideData{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
