package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
	"newsroom/internal/services/imagegen"
	"newsroom/internal/stage"
	"newsroom/internal/store"
	"newsroom/internal/textutil"
)

// StageName labels image batches in reports and metrics.
const StageName = "images"

// DefaultSnippetChars caps the condensed scene description.
const DefaultSnippetChars = 250

// TextGenerator produces free-form text from a prompt pair.
type TextGenerator interface {
	CompleteText(ctx context.Context, system, user string) (string, error)
}

// ImageGenerator renders a prompt into an image URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (imagegen.Result, error)
}

// Overrides pin traits that would otherwise be sampled. Empty fields are
// sampled from the artist.
type Overrides struct {
	Medium    string
	Aesthetic string
	Style     string
}

// Rendering is the outcome of one image generation.
type Rendering struct {
	Prompt    string
	ImageURL  string
	Medium    string
	Aesthetic string
	Style     string
	Model     string
}

// Generator condenses articles and renders their images.
type Generator struct {
	store   *store.Store
	text    TextGenerator
	images  ImageGenerator
	loader  *contextstore.Loader
	logger  *slog.Logger
	metrics *metrics.Metrics
	// rngMu guards rng; a nil rng samples from the global source.
	rngMu        sync.Mutex
	rng          *rand.Rand
	snippetChars int
	itemTimeout  time.Duration
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logging.NewComponentLogger(logger, "images")
		}
	}
}

// WithMetrics records batch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithRand sets the trait sampling source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithSnippetChars overrides the scene description cap.
func WithSnippetChars(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.snippetChars = n
		}
	}
}

// WithItemTimeout bounds each article in a batch.
func WithItemTimeout(timeout time.Duration) Option {
	return func(g *Generator) { g.itemTimeout = timeout }
}

// New builds a Generator.
func New(st *store.Store, text TextGenerator, images ImageGenerator, loader *contextstore.Loader, opts ...Option) *Generator {
	g := &Generator{
		store:        st,
		text:         text,
		images:       images,
		loader:       loader,
		logger:       logging.NewNop(),
		snippetChars: DefaultSnippetChars,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Condense turns the article's bullet points into a short scene description.
func (g *Generator) Condense(ctx context.Context, article *store.Article) (string, error) {
	if !article.HasSummary() {
		return "", services.Wrap(services.ErrValidation, StageName, "condense", "article has no bullet points", nil)
	}
	directive, err := g.loader.Load(contextstore.KindDirective, contextstore.DirectiveCondense)
	if err != nil {
		return "", err
	}
	user := fmt.Sprintf("Headline: %s\n\n%s", article.Title, article.BulletPoints)
	raw, err := g.text.CompleteText(ctx, directive, user)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", services.Wrap(services.ErrGeneration, StageName, "condense", "text model request failed", err)
	}
	snippet := textutil.Truncate(strings.Join(strings.Fields(raw), " "), g.snippetChars)
	if snippet == "" {
		return "", services.Wrap(services.ErrGeneration, StageName, "condense", "model returned an empty description", nil)
	}
	return snippet, nil
}

// Render composes the image prompt for snippet and asks the image model for
// a picture.
func (g *Generator) Render(ctx context.Context, snippet, title string, artist creators.Artist, overrides Overrides) (Rendering, error) {
	r := Rendering{
		Medium:    g.pick(overrides.Medium, artist.Mediums()),
		Aesthetic: g.pick(overrides.Aesthetic, artist.Aesthetics()),
		Style:     g.pick(overrides.Style, artist.Styles()),
	}
	mediumText, err := g.loader.Load(contextstore.KindMedium, r.Medium)
	if err != nil {
		return Rendering{}, err
	}
	aestheticText, err := g.loader.Load(contextstore.KindAesthetic, r.Aesthetic)
	if err != nil {
		return Rendering{}, err
	}
	r.Prompt = composePrompt(snippet, title, r, mediumText, aestheticText)

	result, err := g.images.GenerateImage(ctx, r.Prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Rendering{}, err
		}
		if errors.Is(err, services.ErrGeneration) {
			return Rendering{}, err
		}
		return Rendering{}, services.Wrap(services.ErrGeneration, StageName, "render", "image model request failed", err)
	}
	if strings.TrimSpace(result.URL) == "" {
		return Rendering{}, services.Wrap(services.ErrGeneration, StageName, "render", "image model returned no image", nil)
	}
	r.ImageURL = result.URL
	r.Model = result.Model
	return r, nil
}

func (g *Generator) pick(override string, options []string) string {
	if value := strings.TrimSpace(override); value != "" {
		return value
	}
	if len(options) == 0 {
		return ""
	}
	if g.rng == nil {
		return options[rand.IntN(len(options))]
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return options[g.rng.IntN(len(options))]
}

func composePrompt(snippet, title string, r Rendering, mediumText, aestheticText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Featured image for a local news article titled %q.\n", strings.TrimSpace(title))
	fmt.Fprintf(&b, "Scene: %s\n\n", snippet)
	fmt.Fprintf(&b, "Medium (%s): %s\n", creators.Label(r.Medium), mediumText)
	fmt.Fprintf(&b, "Aesthetic (%s): %s\n", creators.Label(r.Aesthetic), aestheticText)
	if r.Style != "" {
		fmt.Fprintf(&b, "Style: %s.\n", r.Style)
	}
	b.WriteString("Do not include any text, letters, captions or logos.")
	return b.String()
}

// GenerateBatch creates art for up to n summarized articles that have none.
func (g *Generator) GenerateBatch(ctx context.Context, artist creators.Artist, n int, overrides Overrides) (stage.Report, error) {
	batch := stage.Runner{
		Stage:       StageName,
		Logger:      g.logger,
		Metrics:     g.metrics,
		ItemTimeout: g.itemTimeout,
	}.Begin()
	if n <= 0 {
		return batch.Finish(ctx), nil
	}
	pending, err := g.store.ArticlesNeedingArt(ctx, n)
	if err != nil {
		return batch.Report(), fmt.Errorf("generate images: %w", err)
	}
	for _, article := range pending {
		err := batch.Run(ctx, strconv.FormatInt(article.ID, 10), func(itemCtx context.Context) error {
			return g.generateOne(itemCtx, article, artist, overrides)
		})
		if err != nil {
			return batch.Report(), fmt.Errorf("generate images: %w", err)
		}
	}
	return batch.Finish(ctx), nil
}

func (g *Generator) generateOne(ctx context.Context, article *store.Article, artist creators.Artist, overrides Overrides) error {
	snippet, err := g.Condense(ctx, article)
	if err != nil {
		return err
	}
	rendering, err := g.Render(ctx, snippet, article.Title, artist, overrides)
	if err != nil {
		return err
	}
	inserted, err := g.store.InsertArt(ctx, &store.Art{
		ArticleID: article.ID,
		ArtistID:  artist.ID,
		Title:     article.Title,
		Prompt:    rendering.Prompt,
		Snippet:   snippet,
		ImageURL:  rendering.ImageURL,
		Medium:    rendering.Medium,
		Aesthetic: rendering.Aesthetic,
		Style:     rendering.Style,
		Model:     rendering.Model,
	})
	if err != nil {
		return stage.Systemic(err)
	}
	if !inserted {
		return stage.Skip("art already exists")
	}
	return nil
}
