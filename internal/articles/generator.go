package articles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
	"newsroom/internal/services/llm"
	"newsroom/internal/store"
)

// StageName labels article batches in reports and metrics.
const StageName = "articles"

// TextGenerator is a chat model that can answer in JSON or free text.
type TextGenerator interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
	CompleteText(ctx context.Context, system, user string) (string, error)
}

// Source is the material an article is written from: either a transcript or
// an ad-hoc brief made of background context and a request.
type Source struct {
	VideoID    string
	Transcript string
	Context    string
	Prompt     string
}

// FromTranscript builds a Source from a cached transcript.
func FromTranscript(t *store.Transcript) Source {
	return Source{VideoID: t.VideoID, Transcript: t.Content}
}

func (s Source) empty() bool {
	return strings.TrimSpace(s.Transcript) == "" &&
		strings.TrimSpace(s.Context) == "" &&
		strings.TrimSpace(s.Prompt) == ""
}

// Draft is a generated article that has not been stored yet.
type Draft struct {
	Title       string
	Content     string
	AuthorID    string
	Tone        creators.Tone
	ArticleType creators.ArticleType
}

// Generator writes articles.
type Generator struct {
	store    *store.Store
	text     TextGenerator
	loader   *contextstore.Loader
	registry *creators.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics

	itemTimeout time.Duration
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logging.NewComponentLogger(logger, "articles")
		}
	}
}

// WithMetrics records batch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithItemTimeout bounds each article in a batch.
func WithItemTimeout(timeout time.Duration) Option {
	return func(g *Generator) { g.itemTimeout = timeout }
}

// New builds a Generator. st may be nil when only Generate is used.
func New(st *store.Store, text TextGenerator, loader *contextstore.Loader, registry *creators.Registry, opts ...Option) *Generator {
	if registry == nil {
		registry = creators.Default()
	}
	g := &Generator{
		store:    st,
		text:     text,
		loader:   loader,
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type articlePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Generate writes one article for src in the journalist's voice.
func (g *Generator) Generate(ctx context.Context, journalist creators.Journalist, src Source, tone creators.Tone, articleType creators.ArticleType) (Draft, error) {
	if src.empty() {
		return Draft{}, services.Wrap(services.ErrValidation, StageName, "generate", "source has no text", nil)
	}
	if tone == "" {
		tone = journalist.DefaultTone
	}
	if articleType == "" {
		articleType = journalist.DefaultArticleType
	}
	system, err := g.systemPrompt(journalist, tone, articleType)
	if err != nil {
		return Draft{}, err
	}

	raw, err := g.text.CompleteJSON(ctx, system, userPrompt(src))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Draft{}, err
		}
		return Draft{}, services.Wrap(services.ErrGeneration, StageName, "generate", "text model request failed", err)
	}
	var payload articlePayload
	if err := llm.DecodeLLMJSON(raw, &payload); err != nil {
		return Draft{}, services.Wrap(services.ErrGeneration, StageName, "generate", "model returned invalid JSON", err)
	}
	title := strings.Join(strings.Fields(payload.Title), " ")
	if title == "" || len(Paragraphs(payload.Body)) == 0 {
		return Draft{}, services.Wrap(services.ErrGeneration, StageName, "generate", "model returned an empty title or body", nil)
	}
	content := RenderHTML(title, payload.Body)
	if err := Validate(content); err != nil {
		return Draft{}, services.Wrap(services.ErrGeneration, StageName, "generate", "rendered article failed validation", err)
	}
	return Draft{
		Title:       title,
		Content:     content,
		AuthorID:    journalist.ID,
		Tone:        tone,
		ArticleType: articleType,
	}, nil
}

func (g *Generator) systemPrompt(j creators.Journalist, tone creators.Tone, articleType creators.ArticleType) (string, error) {
	sections := []struct {
		label string
		kind  contextstore.Kind
		value string
	}{
		{"Tone", contextstore.KindTone, string(tone)},
		{"Article type", contextstore.KindArticleType, string(articleType)},
		{"Slant", contextstore.KindSlant, j.Slant},
		{"Style", contextstore.KindStyle, j.Style},
	}
	var b strings.Builder
	for _, section := range sections {
		text, err := g.loader.Load(section.kind, section.value)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s (%s):\n%s\n\n", section.label, section.value, text)
	}
	fmt.Fprintf(&b, "You are %s, a %s journalist with a %s writing style.\n", j.Name(), j.Slant, j.Style)
	fmt.Fprintf(&b, "Write a %s article in a %s tone.\n", strings.ReplaceAll(string(articleType), "_", "-"), tone)
	if guidelines := j.Guidelines(); len(guidelines) > 0 {
		b.WriteString("\nGuidelines:\n")
		for _, line := range guidelines {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nRespond with a JSON object {\"title\": string, \"body\": string}. ")
	b.WriteString("The body is plain text with paragraphs separated by blank lines; do not use HTML or Markdown.")
	return b.String(), nil
}

func userPrompt(src Source) string {
	var b strings.Builder
	if transcript := strings.TrimSpace(src.Transcript); transcript != "" {
		b.WriteString("Write a complete article based on this meeting transcript.\n\nTranscript:\n")
		b.WriteString(transcript)
		return b.String()
	}
	b.WriteString("Write a complete article suitable for publication.")
	if background := strings.TrimSpace(src.Context); background != "" {
		b.WriteString("\n\nBackground:\n")
		b.WriteString(background)
	}
	if prompt := strings.TrimSpace(src.Prompt); prompt != "" {
		b.WriteString("\n\nRequest from the editor:\n")
		b.WriteString(prompt)
	}
	return b.String()
}
