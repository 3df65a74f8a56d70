package creators

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"newsroom/internal/services"
)

// Journalist is a text-producing creator identity.
type Journalist struct {
	ID                 string
	FirstName          string
	LastName           string
	Slant              string
	Style              string
	DefaultTone        Tone
	DefaultArticleType ArticleType
	guidelines         []string
}

// Name returns the display name.
func (j Journalist) Name() string { return j.FirstName + " " + j.LastName }

// Guidelines returns a copy of the journalist's writing rules.
func (j Journalist) Guidelines() []string { return slices.Clone(j.guidelines) }

// Artist is an image-producing creator identity. Medium, aesthetic and style
// are sampled per image from the trait sets.
type Artist struct {
	ID         string
	FirstName  string
	LastName   string
	Slant      string
	Style      string
	mediums    []string
	aesthetics []string
	styles     []string
}

// Name returns the display name.
func (a Artist) Name() string { return a.FirstName + " " + a.LastName }

// Mediums returns the artist's allowed mediums.
func (a Artist) Mediums() []string { return slices.Clone(a.mediums) }

// Aesthetics returns the artist's allowed aesthetics.
func (a Artist) Aesthetics() []string { return slices.Clone(a.aesthetics) }

// Styles returns the artist's allowed image styles.
func (a Artist) Styles() []string { return slices.Clone(a.styles) }

// Registry is the closed set of creators known to the newsroom.
type Registry struct {
	journalists map[string]Journalist
	artists     map[string]Artist
}

// Default creator ids.
const (
	AureliusStone  = "aurelius-stone"
	SpectraVeritas = "spectra-veritas"
)

// Default returns the built-in registry.
func Default() *Registry {
	return &Registry{
		journalists: map[string]Journalist{
			AureliusStone: {
				ID:                 AureliusStone,
				FirstName:          "Aurelius",
				LastName:           "Stone",
				Slant:              "unbiased",
				Style:              "conversational",
				DefaultTone:        ToneAnalytical,
				DefaultArticleType: TypeOpEd,
				guidelines:         aureliusGuidelines,
			},
		},
		artists: map[string]Artist{
			SpectraVeritas: {
				ID:         SpectraVeritas,
				FirstName:  "Spectra",
				LastName:   "Veritas",
				Slant:      "neutral",
				Style:      "versatile",
				mediums:    []string{"digital_painting", "watercolor", "oil_painting", "ink_illustration", "photography", "collage"},
				aesthetics: []string{"minimalist", "surrealist", "photorealistic", "editorial", "retro_futurist", "impressionist"},
				styles:     []string{"cinematic", "flat illustration", "documentary", "painterly", "isometric"},
			},
		},
	}
}

var aureliusGuidelines = []string{
	"Don't introduce yourself in the article.",
	"Write a comprehensive, factual account of what was discussed and decided.",
	"Use proper journalistic formatting with headline, lead paragraph, and body.",
	"Maintain the specified tone and style throughout.",
	"Report what happened without expressing opinions about whether decisions are good or bad.",
	"Provide factual context and background for decisions and discussions.",
	"Explain what was decided, who said what, and what the outcomes were.",
	"Focus on the key points, decisions, and discussions from the transcript.",
	"If there are any emergencies, mention them and explain when they are happening.",
	"Note public participation to show local engagement.",
	"Write at least 500-800 words with substantial detail about what transpired.",
	"Do not mention procedural details like roll call, decorum rules, or agenda approvals.",
	"Do not open with generic hooks like 'Ever wonder how...'; start with the specific content.",
	"Write as if this is one of many articles about the same city; skip basic civics explanations.",
}

// Journalist returns the journalist with id. Display names such as
// "Aurelius Stone" resolve too.
func (r *Registry) Journalist(id string) (Journalist, error) {
	if j, ok := r.journalists[NormalizeID(id)]; ok {
		return j, nil
	}
	return Journalist{}, services.Wrap(services.ErrNotFound, "creators", "journalist",
		fmt.Sprintf("unknown journalist %q", id), nil)
}

// Artist returns the artist with id.
func (r *Registry) Artist(id string) (Artist, error) {
	if a, ok := r.artists[NormalizeID(id)]; ok {
		return a, nil
	}
	return Artist{}, services.Wrap(services.ErrNotFound, "creators", "artist",
		fmt.Sprintf("unknown artist %q", id), nil)
}

// Journalists returns every journalist sorted by id.
func (r *Registry) Journalists() []Journalist {
	out := make([]Journalist, 0, len(r.journalists))
	for _, j := range r.journalists {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Artists returns every artist sorted by id.
func (r *Registry) Artists() []Artist {
	out := make([]Artist, 0, len(r.artists))
	for _, a := range r.artists {
		out = append(out, a)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// NormalizeID folds a display name or id into registry form.
func NormalizeID(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(value)
}

// TemplateKey returns the context template stem for a creator id, e.g.
// "aurelius_stone".
func TemplateKey(id string) string {
	return strings.ReplaceAll(NormalizeID(id), "-", "_")
}

// Label renders an enumeration or trait value for display: "op_ed" becomes
// "Op Ed".
func Label(value string) string {
	value = strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(value))
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(value)
}
