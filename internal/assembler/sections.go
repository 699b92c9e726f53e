package assembler

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

const (
	neutralText   = "#374151"
	neutralBorder = "#E5E7EB"
	disabledText  = "#9CA3AF"
	destructiveBG = "#EF4444"
	surfaceWhite  = "#FFFFFF"
	notApplicable = "n/a"
)

func designPrinciples() []styleguide.NamedDescription {
	return []styleguide.NamedDescription{
		{Name: "Clarity Above All", Description: "Each element states its purpose at a glance; available actions are obvious without explanation."},
		{Name: "Discovery-Driven", Description: "Layouts invite exploration, filtering and browsing, surfacing related content along the way."},
		{Name: "Developer-Friendly", Description: "Technical details, specifications and code samples are always one step away."},
		{Name: "Trustworthy & Professional", Description: "Clean, consistent, polished patterns signal reliability."},
		{Name: "Efficient & Performant", Description: "Speed is a feature: fast loads, little friction, short paths to completion."},
		{Name: "Accessible & Inclusive", Description: "Content works for everyone regardless of ability, device or connection."},
	}
}

func logoSection(t tokens) styleguide.Logo {
	return styleguide.Logo{
		Specifications: []styleguide.AttributeSpec{
			{Attribute: "Primary Format", Specification: "SVG for web, PNG for applications"},
			{Attribute: "Minimum Width", Specification: "120px on screen, 1 inch in print"},
			{Attribute: "Clear Space", Specification: "At least the height of the letter M on every side"},
			{Attribute: "Primary Color", Specification: t.primary + " on light backgrounds"},
			{Attribute: "Inverse Color", Specification: surfaceWhite + " (White) on dark backgrounds"},
			{Attribute: "Accent Variant", Specification: t.accent + " for special applications"},
		},
		IncorrectUsage: []string{
			"Never stretch or distort the proportions",
			"Never rotate the mark",
			"Never add shadows, gradients or outlines",
			"Never place it on busy photographic backgrounds",
			"Never use unapproved color combinations",
			"Never render it below the minimum size",
		},
	}
}

func iconographySection() styleguide.Iconography {
	return styleguide.Iconography{
		Specifications: []styleguide.AttributeSpec{
			{Attribute: "Style", Specification: "Outlined strokes with rounded corners"},
			{Attribute: "Stroke Width", Specification: "1.5px at standard size, scaled proportionally"},
			{Attribute: "Grid Size", Specification: "24x24px base with 16px and 20px variants"},
			{Attribute: "Corner Radius", Specification: "2px on rounded elements"},
			{Attribute: "Color", Specification: "Inherit the text color or use a semantic color"},
			{Attribute: "Library", Specification: "Lucide or Heroicons (outline set)"},
		},
		UsageGuidelines: []string{
			"Icons supplement text and never replace it",
			"Keep icon sizes consistent within a context",
			"Leave at least 4px between an icon and its label",
			"Status icons use the semantic system colors",
			"Icon-only buttons carry a tooltip or aria-label",
		},
	}
}

func imagerySection() styleguide.Imagery {
	return styleguide.Imagery{Specifications: []styleguide.ImageSpec{
		{Type: "Logos", Format: "PNG/SVG", MaxSize: "96x96px @2x", Guidelines: "Square, transparent background, optimized"},
		{Type: "Screenshots", Format: "PNG/WebP", MaxSize: "1200px width", Guidelines: "Clean, minimal chrome, annotated"},
		{Type: "Hero Images", Format: "WebP/AVIF", MaxSize: "1920px width", Guidelines: "Abstract patterns in brand tones"},
		{Type: "Thumbnails", Format: "WebP", MaxSize: "400x300px", Guidelines: "Consistent aspect ratio and focal point"},
	}}
}

func contentStyleSection() styleguide.ContentStyle {
	return styleguide.ContentStyle{
		VoiceCharacteristics: []styleguide.NamedDescription{
			{Name: "Knowledgeable", Description: "Speaks with expertise about the subject matter"},
			{Name: "Helpful", Description: "Every message solves a problem or adds value"},
			{Name: "Clear", Description: "Avoids jargon, and explains it when unavoidable"},
			{Name: "Efficient", Description: "Respects the reader's time with concise copy"},
			{Name: "Trustworthy", Description: "Honest about limits and capabilities"},
		},
		ToneVariations: []styleguide.ToneVariation{
			{Context: "Product Descriptions", Tone: "Informative, neutral", Example: "Keeps your data in sync across every connected service."},
			{Context: "Error Messages", Tone: "Helpful, reassuring", Example: "We couldn't find that. Check the name or browse the categories."},
			{Context: "Success States", Tone: "Encouraging, brief", Example: "Saved to your favorites."},
			{Context: "Empty States", Tone: "Friendly, guiding", Example: "Nothing matches these filters yet. Try a broader search."},
			{Context: "Technical Docs", Tone: "Precise, instructional", Example: "Install with: go install ./cmd/..."},
		},
		WritingGuidelines: styleguide.WritingGuidelines{
			Capitalization: []string{
				"Sentence case for headings and UI labels",
				"Capitalize proper nouns and product names",
				"Reserve ALL CAPS for abbreviations",
			},
			Punctuation: []string{
				"Use the serial comma in lists",
				"Skip exclamation points in UI copy except for celebrations",
				"Use en dashes for ranges",
			},
			Numbers: []string{
				"Spell out one through nine",
				"Use numerals for 10 and above and for technical values",
				"Group thousands with commas (1,000 and 10,000)",
			},
			TechnicalWriting: []string{
				"Format commands, file names and API references as code",
				"Expand acronyms on first use",
				"Link to documentation when referencing external tools",
			},
		},
	}
}

func uiComponentsSection(t tokens) styleguide.UIComponents {
	focus := "2px " + t.primary
	return styleguide.UIComponents{
		Buttons: styleguide.Buttons{
			Variants: []styleguide.ButtonSpec{
				{Variant: "Primary", Background: t.primary, Text: surfaceWhite, Border: "None", UseCase: "Main call to action, form submission"},
				{Variant: "Secondary", Background: "Transparent", Text: t.primary, Border: "1px " + t.primary, UseCase: "Secondary actions"},
				{Variant: "Tertiary", Background: "Transparent", Text: neutralText, Border: "None", UseCase: "Minor actions, text links"},
				{Variant: "Ghost", Background: "Transparent", Text: t.primary, Border: "None", UseCase: "Icon buttons, subtle actions"},
				{Variant: "Destructive", Background: destructiveBG, Text: surfaceWhite, Border: "None", UseCase: "Delete and remove actions"},
				{Variant: "Disabled", Background: neutralBorder, Text: disabledText, Border: "None", UseCase: "Unavailable actions"},
			},
			Sizes: []styleguide.ButtonSize{
				{Size: "Small", Height: "32px", PaddingH: "12px", FontSize: "14px", BorderRadius: "6px"},
				{Size: "Medium (Default)", Height: "40px", PaddingH: "16px", FontSize: "16px", BorderRadius: "8px"},
				{Size: "Large", Height: "48px", PaddingH: "24px", FontSize: "18px", BorderRadius: "10px"},
			},
		},
		Cards: []styleguide.PropertyValue{
			{Property: "Background", Value: surfaceWhite},
			{Property: "Border", Value: "1px solid " + neutralBorder},
			{Property: "Border Radius", Value: "12px"},
			{Property: "Padding", Value: "20px"},
			{Property: "Shadow (Default)", Value: "0 1px 3px rgba(0,0,0,0.1)"},
			{Property: "Shadow (Hover)", Value: "0 4px 12px rgba(0,0,0,0.15)"},
			{Property: "Transition", Value: "all 0.2s ease-in-out"},
			{Property: "Min Height", Value: "160px (adjustable)"},
		},
		Forms: []styleguide.FormSpec{
			{Property: "Height", TextInput: "40px", Select: "40px", Checkbox: "20px"},
			{Property: "Border", TextInput: "1px " + neutralBorder, Select: "1px " + neutralBorder, Checkbox: "1px " + neutralBorder},
			{Property: "Border Radius", TextInput: "8px", Select: "8px", Checkbox: "4px"},
			{Property: "Focus Border", TextInput: focus, Select: focus, Checkbox: focus},
			{Property: "Background", TextInput: surfaceWhite, Select: surfaceWhite, Checkbox: surfaceWhite},
			{Property: "Checked Background", TextInput: notApplicable, Select: notApplicable, Checkbox: t.primary},
			{Property: "Padding", TextInput: "10px 14px", Select: "10px 14px", Checkbox: notApplicable},
			{Property: "Font Size", TextInput: "16px", Select: "16px", Checkbox: notApplicable},
		},
		Navigation: []styleguide.NavigationSpec{
			{Element: "Header Height", Specification: "64px desktop, 56px mobile"},
			{Element: "Logo Area", Specification: "Left-aligned, 120px max width"},
			{Element: "Nav Links", Specification: "Center or right-aligned, 16px type, 24px gap"},
			{Element: "Active State", Specification: t.primary + " underline (2px) or text color"},
			{Element: "Hover State", Specification: t.accent + " text color"},
			{Element: "Mobile Menu", Specification: "Full-screen overlay behind a hamburger trigger"},
			{Element: "Search Bar", Specification: "Right-aligned, expands on mobile"},
		},
	}
}

func layoutSection() styleguide.Layout {
	spacing := []struct {
		step    int
		useCase string
	}{
		{1, "Tight spacing, icon gaps"},
		{2, "Default inline spacing"},
		{3, "Component internal padding"},
		{4, "Small section gaps"},
		{5, "Card padding"},
		{6, "Section spacing"},
		{8, "Large section breaks"},
		{10, "Page section margins"},
		{12, "Major section separators"},
		{16, "Hero and feature spacing"},
	}
	tokens := make([]styleguide.SpacingToken, 0, len(spacing))
	for _, s := range spacing {
		tokens = append(tokens, styleguide.SpacingToken{
			Token:   fmt.Sprintf("space-%d", s.step),
			Value:   fmt.Sprintf("%dpx", s.step*4),
			UseCase: s.useCase,
		})
	}
	return styleguide.Layout{
		Grid: []styleguide.PropertyValue{
			{Property: "Columns", Value: "12"},
			{Property: "Gutter Width", Value: "24px desktop, 16px mobile"},
			{Property: "Max Container Width", Value: "1280px"},
			{Property: "Container Padding", Value: "24px desktop, 16px mobile"},
			{Property: "Content Width", Value: "Fluid up to the max width"},
		},
		Breakpoints: []styleguide.Breakpoint{
			{Name: "Mobile (xs)", Width: "< 640px", Columns: "1-2", Layout: "Stacked, full-width cards"},
			{Name: "Tablet (sm)", Width: "640px - 768px", Columns: "2-3", Layout: "Two-column grid"},
			{Name: "Tablet (md)", Width: "768px - 1024px", Columns: "3-4", Layout: "Three-column grid"},
			{Name: "Desktop (lg)", Width: "1024px - 1280px", Columns: "4", Layout: "Four-column grid"},
			{Name: "Large (xl)", Width: "> 1280px", Columns: "4-6", Layout: "Centered container at max width"},
		},
		Spacing: tokens,
	}
}

func resourcesSection(t styleguide.Typography) []styleguide.Resource {
	mono := "JetBrains Mono"
	if t.MonospaceFont != nil {
		mono = t.MonospaceFont.Name
	}
	return []styleguide.Resource{
		{Name: "Design Files", Location: "[Link to design project]"},
		{Name: "Icon Library", Location: "Lucide: https://lucide.dev/"},
		{Name: "Font Files", Location: fmt.Sprintf("%s: https://fonts.google.com/specimen/%s", t.PrimaryFont.Name, strings.ReplaceAll(t.PrimaryFont.Name, " ", "+"))},
		{Name: "Monospace Font", Location: mono + ": https://www.jetbrains.com/lp/mono/"},
		{Name: "Color Contrast Tool", Location: "https://webaim.org/resources/contrastchecker/"},
		{Name: "WCAG Guidelines", Location: "https://www.w3.org/WAI/WCAG21/quickref/"},
		{Name: "Component Library", Location: "[Link to component docs]"},
		{Name: "Code Repository", Location: "[Link to repository]"},
		{Name: "Brand Assets", Location: "[Link to downloadable assets]"},
	}
}
