package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedTranscript stores a primary-source transcript for videoID.
func SeedTranscript(t testing.TB, st *store.Store, videoID, content string) *store.Transcript {
	t.Helper()

	transcript := &store.Transcript{
		VideoID:   videoID,
		Content:   content,
		Source:    store.SourcePrimary,
		Language:  "en",
		FetchedAt: time.Now().UTC(),
	}
	if _, err := st.SaveTranscript(context.Background(), transcript); err != nil {
		t.Fatalf("SaveTranscript(%s): %v", videoID, err)
	}
	return transcript
}

// SeedArticle stores an article for videoID (empty for ad-hoc) with the given
// bullet points, which may be empty.
func SeedArticle(t testing.TB, st *store.Store, videoID, bulletPoints string) *store.Article {
	t.Helper()

	title := "Article"
	if videoID != "" {
		title = fmt.Sprintf("Article for %s", videoID)
	}
	article := &store.Article{
		VideoID:      videoID,
		Title:        title,
		Content:      "<article><header><h1>" + title + "</h1></header><div class=\"article-body\"><p>Body text.</p></div></article>",
		BulletPoints: bulletPoints,
		AuthorID:     "aurelius-stone",
		Tone:         "analytical",
		ArticleType:  "op_ed",
	}
	if err := st.InsertArticle(context.Background(), article); err != nil {
		t.Fatalf("InsertArticle(%s): %v", videoID, err)
	}
	return article
}
