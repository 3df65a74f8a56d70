package images_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
	"newsroom/internal/images"
	"newsroom/internal/services"
	"newsroom/internal/store"
	"newsroom/internal/testsupport"
)

func artist(t *testing.T) creators.Artist {
	t.Helper()
	a, err := creators.Default().Artist(creators.SpectraVeritas)
	if err != nil {
		t.Fatalf("Artist: %v", err)
	}
	return a
}

func newGenerator(st *store.Store, text *testsupport.FakeText, imgs *testsupport.FakeImages) *images.Generator {
	return images.New(st, text, imgs, contextstore.New(""), images.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestRenderUsesOverrides(t *testing.T) {
	imgs := &testsupport.FakeImages{}
	gen := newGenerator(nil, &testsupport.FakeText{}, imgs)

	r, err := gen.Render(context.Background(), "A crowded council chamber", "Budget vote", artist(t),
		images.Overrides{Medium: "watercolor", Aesthetic: "minimalist", Style: "documentary"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Medium != "watercolor" || r.Aesthetic != "minimalist" || r.Style != "documentary" {
		t.Fatalf("overrides ignored: %+v", r)
	}
	if !strings.Contains(r.Prompt, "A crowded council chamber") || !strings.Contains(r.Prompt, "Watercolor") {
		t.Fatalf("unexpected prompt %q", r.Prompt)
	}
	if r.ImageURL == "" || r.Model != "fake-image-model" {
		t.Fatalf("unexpected rendering %+v", r)
	}
}

func TestRenderSamplesFromArtistTraits(t *testing.T) {
	gen := newGenerator(nil, &testsupport.FakeText{}, &testsupport.FakeImages{})
	a := artist(t)
	for i := 0; i < 10; i++ {
		r, err := gen.Render(context.Background(), "scene", "title", a, images.Overrides{})
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !slices.Contains(a.Mediums(), r.Medium) || !slices.Contains(a.Aesthetics(), r.Aesthetic) || !slices.Contains(a.Styles(), r.Style) {
			t.Fatalf("sampled trait outside artist set: %+v", r)
		}
	}
}

func TestRenderUnknownMedium(t *testing.T) {
	gen := newGenerator(nil, &testsupport.FakeText{}, &testsupport.FakeImages{})
	_, err := gen.Render(context.Background(), "scene", "title", artist(t), images.Overrides{Medium: "fresco"})
	if !errors.Is(err, services.ErrContextLoad) {
		t.Fatalf("expected ErrContextLoad, got %v", err)
	}
}

func TestCondenseCapsSnippet(t *testing.T) {
	text := &testsupport.FakeText{TextReply: strings.Repeat("A council chamber full of residents, ", 20)}
	gen := newGenerator(nil, text, &testsupport.FakeImages{})
	snippet, err := gen.Condense(context.Background(), &store.Article{ID: 1, Title: "T", BulletPoints: "- point"})
	if err != nil {
		t.Fatalf("Condense failed: %v", err)
	}
	if n := utf8.RuneCountInString(snippet); n > images.DefaultSnippetChars || n == 0 {
		t.Fatalf("snippet has %d chars", n)
	}
}

func TestGenerateBatchWritesArtOnlyOnSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	ok := testsupport.SeedArticle(t, st, "v1", "- fine")
	failing := testsupport.SeedArticle(t, st, "v2", "- POISON")
	testsupport.SeedArticle(t, st, "v3", "")

	imgs := &testsupport.FakeImages{}
	gen := newGenerator(st, &testsupport.FakeText{FailWhen: "POISON"}, imgs)
	report, err := gen.GenerateBatch(ctx, artist(t), 10, images.Overrides{})
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}
	if report.Attempted != 2 || report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if imgs.PromptCount() != 1 {
		t.Fatalf("image model should only run after a successful condense, ran %d times", imgs.PromptCount())
	}
	art, err := st.GetArtForArticle(ctx, ok.ID)
	if err != nil || art == nil {
		t.Fatalf("expected art for article %d: %v", ok.ID, err)
	}
	if art.ArtistID != creators.SpectraVeritas || art.Snippet == "" || art.Prompt == "" {
		t.Fatalf("unexpected art %+v", art)
	}
	if missing, _ := st.GetArtForArticle(ctx, failing.ID); missing != nil {
		t.Fatal("failed article must not get art")
	}

	again, err := gen.GenerateBatch(ctx, artist(t), 10, images.Overrides{})
	if err != nil {
		t.Fatalf("second GenerateBatch failed: %v", err)
	}
	if again.Attempted != 1 || again.Failed != 1 {
		t.Fatalf("only the failed article should be retried: %+v", again)
	}
}

func TestGenerateBatchImageFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	article := testsupport.SeedArticle(t, st, "v1", "- point")

	gen := newGenerator(st, &testsupport.FakeText{}, &testsupport.FakeImages{Err: testsupport.ErrFake})
	report, err := gen.GenerateBatch(ctx, artist(t), 1, images.Overrides{})
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}
	if report.Failed != 1 || report.Errors[0].Kind != "generation" {
		t.Fatalf("unexpected report %+v", report)
	}
	if art, _ := st.GetArtForArticle(ctx, article.ID); art != nil {
		t.Fatal("art must not be stored when rendering fails")
	}
}

func TestRenderConcurrent(t *testing.T) {
	a := artist(t)
	seeded := newGenerator(nil, &testsupport.FakeText{}, &testsupport.FakeImages{})
	unseeded := images.New(nil, &testsupport.FakeText{}, &testsupport.FakeImages{}, contextstore.New(""))
	for _, gen := range []*images.Generator{seeded, unseeded} {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					r, err := gen.Render(context.Background(), "scene", "title", a, images.Overrides{})
					if err != nil {
						t.Errorf("Render failed: %v", err)
						return
					}
					if !slices.Contains(a.Mediums(), r.Medium) {
						t.Errorf("medium %q not in artist traits", r.Medium)
						return
					}
				}
			}()
		}
		wg.Wait()
	}
}
