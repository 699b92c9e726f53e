// Package styleguide defines core types shared across subsystems.
package styleguide

import "time"

// RGB holds 8-bit channel values.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Color is a classified design token. Hex is always upper-case #RRGGBB and RGB
// is its exact decode.
type Color struct {
	Hex   string `json:"hex"`
	RGB   RGB    `json:"rgb"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Usage string `json:"usage"`
}

// SystemColors groups the semantic state colors.
type SystemColors struct {
	Success *Color `json:"success,omitempty"`
	Warning *Color `json:"warning,omitempty"`
	Error   *Color `json:"error,omitempty"`
	Info    *Color `json:"info,omitempty"`
}

// ColorPalette is the bucketed view of the classified colors.
type ColorPalette struct {
	Primary    []Color      `json:"primary"`
	Secondary  []Color      `json:"secondary"`
	System     SystemColors `json:"system"`
	Text       []Color      `json:"text"`
	Background []Color      `json:"background"`
}

// FontCategory labels the role of a font family.
type FontCategory string

// Font categories.
const (
	FontPrimary   FontCategory = "primary"
	FontSecondary FontCategory = "secondary"
	FontMonospace FontCategory = "monospace"
)

// FontFamily describes one font of the typography triad.
type FontFamily struct {
	Name     string       `json:"name"`
	Fallback string       `json:"fallback"`
	Category FontCategory `json:"category"`
}

// TypeScaleItem is one rung of the type scale.
type TypeScaleItem struct {
	Element       string `json:"element"`
	Size          string `json:"size"`
	Weight        string `json:"weight"`
	LineHeight    string `json:"lineHeight"`
	LetterSpacing string `json:"letterSpacing"`
}

// Typography is the analyzed font triad plus scale.
type Typography struct {
	PrimaryFont   FontFamily      `json:"primaryFont"`
	SecondaryFont *FontFamily     `json:"secondaryFont,omitempty"`
	MonospaceFont *FontFamily     `json:"monospaceFont,omitempty"`
	Scale         []TypeScaleItem `json:"scale"`
}

// ContrastPair reports the WCAG contrast of one foreground/background pairing.
type ContrastPair struct {
	Combination string `json:"combination"`
	Ratio       string `json:"ratio"`
	Status      string `json:"status"`
}

// Accessibility holds contrast data and templated guidance.
type Accessibility struct {
	ContrastPairs []ContrastPair `json:"contrastPairs"`
	KeyboardNav   []string       `json:"keyboardNav"`
	ScreenReader  []string       `json:"screenReader"`
	VisualDesign  []string       `json:"visualDesign"`
	Motion        []string       `json:"motion"`
}

// Meta identifies the analyzed site.
type Meta struct {
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Title      string `json:"title"`
	AnalyzedAt string `json:"analyzedAt"`
	Version    string `json:"version"`
}

// Brand holds brand copy.
type Brand struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	MissionStatement     string `json:"missionStatement,omitempty"`
	VisionStatement      string `json:"visionStatement,omitempty"`
	StrategicPositioning string `json:"strategicPositioning,omitempty"`
}

// NamedDescription is a generic name/description row.
type NamedDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AttributeSpec is a generic attribute/specification row.
type AttributeSpec struct {
	Attribute     string `json:"attribute"`
	Specification string `json:"specification"`
}

// Logo holds logo usage rules.
type Logo struct {
	Specifications []AttributeSpec `json:"specifications"`
	IncorrectUsage []string        `json:"incorrectUsage"`
}

// Iconography holds icon usage rules.
type Iconography struct {
	Specifications  []AttributeSpec `json:"specifications"`
	UsageGuidelines []string        `json:"usageGuidelines"`
}

// ImageSpec describes one image category.
type ImageSpec struct {
	Type       string `json:"type"`
	Format     string `json:"format"`
	MaxSize    string `json:"maxSize"`
	Guidelines string `json:"guidelines"`
}

// Imagery holds image specifications.
type Imagery struct {
	Specifications []ImageSpec `json:"specifications"`
}

// ToneVariation describes voice in one context.
type ToneVariation struct {
	Context string `json:"context"`
	Tone    string `json:"tone"`
	Example string `json:"example"`
}

// WritingGuidelines groups writing rules.
type WritingGuidelines struct {
	Capitalization   []string `json:"capitalization"`
	Punctuation      []string `json:"punctuation"`
	Numbers          []string `json:"numbers"`
	TechnicalWriting []string `json:"technicalWriting"`
}

// ContentStyle holds voice and tone guidance.
type ContentStyle struct {
	VoiceCharacteristics []NamedDescription `json:"voiceCharacteristics"`
	ToneVariations       []ToneVariation    `json:"toneVariations"`
	WritingGuidelines    WritingGuidelines  `json:"writingGuidelines"`
}

// ButtonSpec describes a button variant.
type ButtonSpec struct {
	Variant    string `json:"variant"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	UseCase    string `json:"useCase"`
}

// ButtonSize describes a button size.
type ButtonSize struct {
	Size         string `json:"size"`
	Height       string `json:"height"`
	PaddingH     string `json:"paddingH"`
	FontSize     string `json:"fontSize"`
	BorderRadius string `json:"borderRadius"`
}

// Buttons groups button specs.
type Buttons struct {
	Variants []ButtonSpec `json:"variants"`
	Sizes    []ButtonSize `json:"sizes"`
}

// PropertyValue is a generic property/value row.
type PropertyValue struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// FormSpec describes one form property across controls.
type FormSpec struct {
	Property  string `json:"property"`
	TextInput string `json:"textInput"`
	Select    string `json:"select"`
	Checkbox  string `json:"checkbox"`
}

// NavigationSpec describes a navigation element.
type NavigationSpec struct {
	Element       string `json:"element"`
	Specification string `json:"specification"`
}

// UIComponents holds component conventions.
type UIComponents struct {
	Buttons    Buttons          `json:"buttons"`
	Cards      []PropertyValue  `json:"cards"`
	Forms      []FormSpec       `json:"forms"`
	Navigation []NavigationSpec `json:"navigation"`
}

// Breakpoint describes one responsive breakpoint.
type Breakpoint struct {
	Name    string `json:"name"`
	Width   string `json:"width"`
	Columns string `json:"columns"`
	Layout  string `json:"layout"`
}

// SpacingToken is one spacing step.
type SpacingToken struct {
	Token   string `json:"token"`
	Value   string `json:"value"`
	UseCase string `json:"useCase"`
}

// Layout holds grid, breakpoint and spacing conventions.
type Layout struct {
	Grid        []PropertyValue `json:"grid"`
	Breakpoints []Breakpoint    `json:"breakpoints"`
	Spacing     []SpacingToken  `json:"spacing"`
}

// Resource is a pointer to an external asset.
type Resource struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ChangelogEntry records a guide revision.
type ChangelogEntry struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Changes string `json:"changes"`
}

// StyleGuideData is the aggregate analysis result.
type StyleGuideData struct {
	Meta             Meta               `json:"meta"`
	Brand            Brand              `json:"brand"`
	DesignPrinciples []NamedDescription `json:"designPrinciples"`
	Logo             Logo               `json:"logo"`
	Colors           ColorPalette       `json:"colors"`
	Typography       Typography         `json:"typography"`
	Iconography      Iconography        `json:"iconography"`
	Imagery          Imagery            `json:"imagery"`
	ContentStyle     ContentStyle       `json:"contentStyle"`
	UIComponents     UIComponents       `json:"uiComponents"`
	Layout           Layout             `json:"layout"`
	Accessibility    Accessibility      `json:"accessibility"`
	Resources        []Resource         `json:"resources"`
	Changelog        []ChangelogEntry   `json:"changelog"`
}

// RawStyles is the unprocessed output of the in-page harvest.
type RawStyles struct {
	Colors        []string `json:"colors"`
	Fonts         []string `json:"fonts"`
	FontSizes     []string `json:"fontSizes"`
	FontWeights   []string `json:"fontWeights"`
	Spacing       []string `json:"spacing"`
	SkippedSheets int      `json:"skippedSheets"`
}

// PageMetadata is read from the rendered document head.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SiteName    string `json:"siteName"`
}

// Job is the persisted progress/result record of one analysis request.
type Job struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	Error       string          `json:"error,omitempty"`
	Result      *StyleGuideData `json:"result,omitempty"`
	DocumentURI string          `json:"documentUri,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// JobUpdate is a partial update merged into an existing Job. Nil fields are
// left untouched.
type JobUpdate struct {
	Status      *JobStatus
	Progress    *int
	Error       *string
	Result      *StyleGuideData
	DocumentURI *string
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	URL       string
	Attempt   int
	Submitted int64
}

// JobEvent is the notification published when a job reaches a terminal state.
type JobEvent struct {
	JobID       string    `json:"job_id"`
	URL         string    `json:"url"`
	Status      JobStatus `json:"status"`
	DocumentURI string    `json:"document_uri,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventFor builds the terminal notification for job.
func EventFor(job Job, at time.Time) JobEvent {
	return JobEvent{
		JobID:       job.ID,
		URL:         job.URL,
		Status:      job.Status,
		DocumentURI: job.DocumentURI,
		Timestamp:   at.UTC(),
	}
}
