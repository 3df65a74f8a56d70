package api_test

import (
	"context"
	"testing"
	"time"

	"newsroom/internal/api"
	"newsroom/internal/store"
	"newsroom/internal/testsupport"
)

func TestArticleServiceDescribeIncludesArt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	article := testsupport.SeedArticle(t, st, "vid1", "- point")
	inserted, err := st.InsertArt(ctx, &store.Art{
		ArticleID: article.ID,
		ArtistID:  "spectra-veritas",
		Title:     article.Title,
		Prompt:    "prompt",
		Snippet:   "snippet",
		ImageURL:  "data:image/png;base64,iVBORw0KGgo=",
		Medium:    "watercolor",
		Aesthetic: "minimalist",
		Style:     "cinematic",
	})
	if err != nil || !inserted {
		t.Fatalf("InsertArt: %v %v", inserted, err)
	}

	svc := api.NewArticleService(st)
	got, err := svc.Describe(ctx, article.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got == nil || got.Content == "" || got.BulletPoints != "- point" {
		t.Fatalf("unexpected article view %+v", got)
	}
	if got.Art == nil || !got.Art.Inline || got.Art.ImageURL != api.ArtImagePath(got.Art.ID) {
		t.Fatalf("expected inline art to be linked, got %+v", got.Art)
	}

	missing, err := svc.Describe(ctx, article.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing article, got %+v (%v)", missing, err)
	}

	list, err := svc.List(ctx, store.ArticleFilter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Content != "" {
		t.Fatalf("list views must omit content, got %+v", list)
	}
}

func TestFromArtKeepsRemoteURL(t *testing.T) {
	art := api.FromArt(&store.Art{ID: 3, ImageURL: "https://images.example/a.png"})
	if art.Inline || art.ImageURL != "https://images.example/a.png" {
		t.Fatalf("remote url must pass through, got %+v", art)
	}
	if api.FromArt(nil) != nil {
		t.Fatal("nil art must convert to nil")
	}
}

func TestFromArticleFormatsTimes(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	view := api.FromArticle(&store.Article{ID: 1, Title: "T", Content: "<p>x</p>", PublishedRef: "post-1", CreatedAt: created}, false)
	if view.CreatedAt != "2024-05-01T12:30:00.000Z" {
		t.Fatalf("unexpected timestamp %q", view.CreatedAt)
	}
	if !view.Published || view.Content != "" || view.UpdatedAt != "" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestFromTranscriptCountsChars(t *testing.T) {
	view := api.FromTranscript(&store.Transcript{VideoID: "v", Content: "hello", Source: store.SourceFallback}, false)
	if view.Chars != 5 || view.Content != "" || view.Source != "fallback" {
		t.Fatalf("unexpected transcript view %+v", view)
	}
}
