package articles_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"newsroom/internal/articles"
	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
	"newsroom/internal/services"
	"newsroom/internal/testsupport"
)

func journalist(t *testing.T) creators.Journalist {
	t.Helper()
	j, err := creators.Default().Journalist(creators.AureliusStone)
	if err != nil {
		t.Fatalf("Journalist: %v", err)
	}
	return j
}

func TestGenerateEscapesModelText(t *testing.T) {
	text := &testsupport.FakeText{}
	gen := articles.New(nil, text, contextstore.New(""), nil)

	draft, err := gen.Generate(context.Background(), journalist(t),
		articles.Source{VideoID: "v1", Transcript: "The council met."}, creators.ToneFormal, creators.TypeNews)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(draft.Content, `<article role="article" aria-labelledby="article-title"><header><h1 id="article-title">Generated headline</h1></header>`) {
		t.Fatalf("unexpected html prefix: %s", draft.Content)
	}
	if strings.Contains(draft.Content, "<b>") || !strings.Contains(draft.Content, "&lt;b&gt;markup&lt;/b&gt; &amp; more") {
		t.Fatalf("model text was not escaped: %s", draft.Content)
	}
	if strings.Count(draft.Content, "<p>") != 2 {
		t.Fatalf("expected two paragraphs: %s", draft.Content)
	}
	if draft.Tone != creators.ToneFormal || draft.ArticleType != creators.TypeNews || draft.AuthorID != creators.AureliusStone {
		t.Fatalf("unexpected draft metadata %+v", draft)
	}
	prompt := text.Prompts[0]
	if !strings.Contains(prompt, "Aurelius Stone") || !strings.Contains(prompt, "The council met.") {
		t.Fatalf("prompt missing identity or transcript: %s", prompt)
	}
}

func TestGenerateMissingTemplate(t *testing.T) {
	loader := contextstore.NewFS(fstest.MapFS{
		"tone/formal.txt": {Data: []byte("Be formal.")},
	})
	text := &testsupport.FakeText{}
	gen := articles.New(nil, text, loader, nil)
	_, err := gen.Generate(context.Background(), journalist(t),
		articles.Source{Transcript: "x"}, creators.ToneFormal, creators.TypeNews)
	if !errors.Is(err, services.ErrContextLoad) {
		t.Fatalf("expected ErrContextLoad, got %v", err)
	}
	if text.PromptCount() != 0 {
		t.Fatal("model must not be called when a template is missing")
	}
}

func TestGenerateEmptyOutput(t *testing.T) {
	text := &testsupport.FakeText{JSONReply: `{"title":"Headline","body":"   "}`}
	gen := articles.New(nil, text, contextstore.New(""), nil)
	_, err := gen.Generate(context.Background(), journalist(t), articles.Source{Transcript: "x"}, "", "")
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestWriteBatchIsolatesFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedTranscript(t, st, "a", "first meeting")
	testsupport.SeedTranscript(t, st, "b", "POISON meeting")
	testsupport.SeedTranscript(t, st, "c", "third meeting")

	text := &testsupport.FakeText{FailWhen: "POISON"}
	gen := articles.New(st, text, contextstore.New(""), nil)
	report, err := gen.WriteBatch(ctx, 10, articles.WriteOptions{})
	if err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if report.Attempted != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Errors[0].Item != "b" || report.Errors[0].Kind != "generation" {
		t.Fatalf("unexpected error entry %+v", report.Errors[0])
	}
	for _, id := range []string{"a", "c"} {
		article, err := st.GetArticleByVideo(ctx, id)
		if err != nil || article == nil {
			t.Fatalf("expected article for %s: %v", id, err)
		}
		if article.Tone != "analytical" || article.ArticleType != "op_ed" {
			t.Fatalf("expected journalist defaults, got %s/%s", article.Tone, article.ArticleType)
		}
	}
	if article, _ := st.GetArticleByVideo(ctx, "b"); article != nil {
		t.Fatal("failed item must not be stored")
	}
	remaining, err := st.TranscriptsWithoutArticle(ctx, 10)
	if err != nil || len(remaining) != 1 || remaining[0].VideoID != "b" {
		t.Fatalf("expected b to remain eligible, got %v (%v)", remaining, err)
	}
}

func TestWriteBatchSlowModelTimesOutEachItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		testsupport.SeedTranscript(t, st, id, "meeting "+id)
	}

	text := &testsupport.FakeText{Delay: 80 * time.Millisecond}
	gen := articles.New(st, text, contextstore.New(""), nil, articles.WithItemTimeout(50*time.Millisecond))
	report, err := gen.WriteBatch(ctx, 10, articles.WriteOptions{})
	if err != nil {
		t.Fatalf("WriteBatch must not abort on item timeouts: %v", err)
	}
	if report.Attempted != 3 || report.Failed != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, e := range report.Errors {
		if e.Kind != "timeout" {
			t.Fatalf("expected timeout kind, got %+v", e)
		}
	}
	remaining, err := st.TranscriptsWithoutArticle(ctx, 10)
	if err != nil || len(remaining) != 3 {
		t.Fatalf("timed out items must stay eligible, got %d (%v)", len(remaining), err)
	}
}

func TestWriteBatchRejectsUnknownTone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	gen := articles.New(st, &testsupport.FakeText{}, contextstore.New(""), nil)
	_, err := gen.WriteBatch(context.Background(), 1, articles.WriteOptions{Tone: "sarcastic"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAdHocAndUpdate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	gen := articles.New(st, &testsupport.FakeText{}, contextstore.New(""), nil)

	article, err := gen.CreateAdHoc(ctx, articles.AdHocRequest{
		Context: "Budget figures",
		Prompt:  "Explain the levy",
		Tone:    "investigative",
	})
	if err != nil {
		t.Fatalf("CreateAdHoc failed: %v", err)
	}
	if article.ID == 0 || article.VideoID != "" || article.Tone != "investigative" {
		t.Fatalf("unexpected article %+v", article)
	}

	title := "A <new> headline"
	updated, err := gen.Update(ctx, article.ID, articles.Edit{Title: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != title || !strings.Contains(updated.Content, "A &lt;new&gt; headline") {
		t.Fatalf("title not rewritten: %s", updated.Content)
	}
	if err := articles.Validate(updated.Content); err != nil {
		t.Fatalf("updated html invalid: %v", err)
	}

	_, err = gen.Update(ctx, 9999, articles.Edit{Title: &title})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlainText(t *testing.T) {
	content := articles.RenderHTML("Title & more", "One.\n\nTwo\nlines.")
	text, err := articles.PlainText(content)
	if err != nil {
		t.Fatalf("PlainText failed: %v", err)
	}
	if text != "Title & more\n\nOne.\n\nTwo lines." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestValidateRejectsMissingBody(t *testing.T) {
	err := articles.Validate(`<article role="article"><header><h1 id="article-title">T</h1></header><div class="article-body"></div></article>`)
	if err == nil {
		t.Fatal("expected validation error")
	}
}
