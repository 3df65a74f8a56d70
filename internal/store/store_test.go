package store_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"newsroom/internal/store"
	"newsroom/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.Enqueue(ctx, "UC1", "a"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	size, err := reopened.QueueSize(ctx)
	if err != nil {
		t.Fatalf("QueueSize failed: %v", err)
	}
	if size != 1 {
		t.Fatalf("expected queued id to survive reopen, got size %d", size)
	}
}

func TestEnqueueIgnoresDuplicatesAndCachedIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedTranscript(t, st, "cached", "already transcribed")

	added, err := st.Enqueue(ctx, "UC1", "a", "b", "a", "cached", " ")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 ids added, got %d", added)
	}
	added, err = st.Enqueue(ctx, "UC1", "b", "c")
	if err != nil {
		t.Fatalf("second Enqueue failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected only c to be added, got %d", added)
	}

	refs, err := st.ListQueue(ctx, 0)
	if err != nil {
		t.Fatalf("ListQueue failed: %v", err)
	}
	got := make([]string, len(refs))
	for i, ref := range refs {
		got[i] = ref.VideoID
	}
	if fmt.Sprint(got) != "[a b c]" {
		t.Fatalf("unexpected queue contents %v", got)
	}
	if refs[0].Source != "UC1" || refs[0].DiscoveredAt.IsZero() {
		t.Fatalf("expected source and discovery time recorded, got %+v", refs[0])
	}
}

func TestDequeueBatchIsFIFOAndRemoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.Enqueue(ctx, "UC1", "v1", "v2", "v3"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := st.Enqueue(ctx, "UC1", "v4"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	first, err := st.DequeueBatch(ctx, 2)
	if err != nil {
		t.Fatalf("DequeueBatch failed: %v", err)
	}
	if len(first) != 2 || first[0].VideoID != "v1" || first[1].VideoID != "v2" {
		t.Fatalf("unexpected first batch %+v", first)
	}
	rest, err := st.DequeueBatch(ctx, 10)
	if err != nil {
		t.Fatalf("DequeueBatch failed: %v", err)
	}
	if len(rest) != 2 || rest[0].VideoID != "v3" || rest[1].VideoID != "v4" {
		t.Fatalf("unexpected second batch %+v", rest)
	}
	empty, err := st.DequeueBatch(ctx, 5)
	if err != nil {
		t.Fatalf("DequeueBatch on empty queue failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty batch, got %+v", empty)
	}
	if size, _ := st.QueueSize(ctx); size != 0 {
		t.Fatalf("expected empty queue, got %d", size)
	}
}

func TestDequeueBatchConcurrentCallersNeverOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const total = 40
	ids := make([]string, total)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid-%02d", i)
	}
	if _, err := st.Enqueue(ctx, "UC1", ids...); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	var (
		mu   sync.Mutex
		seen []string
		wg   sync.WaitGroup
	)
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				batch, err := st.DequeueBatch(ctx, 3)
				if err != nil {
					errs <- err
					return
				}
				if len(batch) == 0 {
					return
				}
				mu.Lock()
				for _, ref := range batch {
					seen = append(seen, ref.VideoID)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent DequeueBatch failed: %v", err)
	}

	if len(seen) != total {
		t.Fatalf("expected %d ids dequeued exactly once, got %d", total, len(seen))
	}
	sort.Strings(seen)
	for i, id := range seen {
		if id != ids[i] {
			t.Fatalf("id %s dequeued more than once or missing (position %d)", id, i)
		}
	}
}

func TestSaveTranscriptRemovesQueuedIDAndIsWriteOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.Enqueue(ctx, "UC1", "vid"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	inserted, err := st.SaveTranscript(ctx, &store.Transcript{VideoID: "vid", Content: "first", Source: store.SourceFallback})
	if err != nil || !inserted {
		t.Fatalf("SaveTranscript = %v, %v", inserted, err)
	}
	if queued, _ := st.QueueContains(ctx, "vid"); queued {
		t.Fatal("expected id removed from queue when transcript stored")
	}

	inserted, err = st.SaveTranscript(ctx, &store.Transcript{VideoID: "vid", Content: "second", Source: store.SourcePrimary})
	if err != nil {
		t.Fatalf("second SaveTranscript failed: %v", err)
	}
	if inserted {
		t.Fatal("expected existing transcript to be left untouched")
	}
	got, err := st.GetTranscript(ctx, "vid")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if got.Content != "first" || got.Source != store.SourceFallback {
		t.Fatalf("unexpected transcript %+v", got)
	}

	missing, err := st.GetTranscript(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing transcript, got %+v, %v", missing, err)
	}
	if _, err := st.SaveTranscript(ctx, &store.Transcript{VideoID: "empty", Content: "  "}); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestFilterUnknown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedTranscript(t, st, "cached", "text")
	if _, err := st.Enqueue(ctx, "UC1", "queued"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	unknown, err := st.FilterUnknown(ctx, []string{"new1", "cached", "queued", "new2", "new1"})
	if err != nil {
		t.Fatalf("FilterUnknown failed: %v", err)
	}
	if fmt.Sprint(unknown) != "[new1 new2]" {
		t.Fatalf("unexpected unknown ids %v", unknown)
	}
}

func TestTranscriptsWithoutArticleOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedTranscript(t, st, "t1", "one")
	testsupport.SeedTranscript(t, st, "t2", "two")
	testsupport.SeedTranscript(t, st, "t3", "three")
	testsupport.SeedArticle(t, st, "t2", "")

	pending, err := st.TranscriptsWithoutArticle(ctx, 10)
	if err != nil {
		t.Fatalf("TranscriptsWithoutArticle failed: %v", err)
	}
	if len(pending) != 2 || pending[0].VideoID != "t1" || pending[1].VideoID != "t3" {
		t.Fatalf("unexpected pending transcripts %+v", pending)
	}
}

func TestInsertArticleRejectsSecondArticleForVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedTranscript(t, st, "vid", "text")
	first := testsupport.SeedArticle(t, st, "vid", "")
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps assigned, got %+v", first)
	}
	dup := &store.Article{VideoID: "vid", Title: "Again", Content: "<p>x</p>", AuthorID: "a", Tone: "casual", ArticleType: "news"}
	if err := st.InsertArticle(ctx, dup); !errors.Is(err, store.ErrArticleExists) {
		t.Fatalf("expected ErrArticleExists, got %v", err)
	}

	adHocA := testsupport.SeedArticle(t, st, "", "")
	adHocB := testsupport.SeedArticle(t, st, "", "")
	if adHocA.ID == adHocB.ID {
		t.Fatal("expected distinct ad-hoc articles")
	}
}

func TestSetBulletPointsOnlyOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	article := testsupport.SeedArticle(t, st, "", "")
	updated, err := st.SetBulletPoints(ctx, article.ID, "- first")
	if err != nil || !updated {
		t.Fatalf("SetBulletPoints = %v, %v", updated, err)
	}
	updated, err = st.SetBulletPoints(ctx, article.ID, "- second")
	if err != nil {
		t.Fatalf("second SetBulletPoints failed: %v", err)
	}
	if updated {
		t.Fatal("expected second summary to be rejected")
	}
	got, err := st.GetArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got.BulletPoints != "- first" || !got.HasSummary() {
		t.Fatalf("unexpected bullet points %q", got.BulletPoints)
	}
}

func TestInsertArtAtMostOncePerArticle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	article := testsupport.SeedArticle(t, st, "", "- point")
	art := &store.Art{ArticleID: article.ID, ArtistID: "spectra-veritas", Prompt: "p", Snippet: "s", ImageURL: "https://img/1.png"}
	inserted, err := st.InsertArt(ctx, art)
	if err != nil || !inserted {
		t.Fatalf("InsertArt = %v, %v", inserted, err)
	}
	if art.ID == 0 {
		t.Fatal("expected art id assigned")
	}
	again := &store.Art{ArticleID: article.ID, ArtistID: "spectra-veritas", Prompt: "p2", Snippet: "s2", ImageURL: "https://img/2.png"}
	inserted, err = st.InsertArt(ctx, again)
	if err != nil {
		t.Fatalf("second InsertArt failed: %v", err)
	}
	if inserted {
		t.Fatal("expected second art row to be rejected")
	}
	got, err := st.GetArtForArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArtForArticle failed: %v", err)
	}
	if got.ImageURL != "https://img/1.png" {
		t.Fatalf("unexpected art %+v", got)
	}
}

func TestStagePredicatesAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.Enqueue(ctx, "UC1", "q1", "q2"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	testsupport.SeedTranscript(t, st, "t1", "one")
	testsupport.SeedTranscript(t, st, "t2", "two")
	testsupport.SeedTranscript(t, st, "t3", "three")
	noSummary := testsupport.SeedArticle(t, st, "t1", "")
	needsArt := testsupport.SeedArticle(t, st, "t2", "- bullet")
	done := testsupport.SeedArticle(t, st, "", "- bullet")
	if _, err := st.InsertArt(ctx, &store.Art{ArticleID: done.ID, ArtistID: "a", Prompt: "p", Snippet: "s", ImageURL: "u"}); err != nil {
		t.Fatalf("InsertArt failed: %v", err)
	}

	summaries, err := st.ArticlesNeedingSummary(ctx, 10)
	if err != nil || len(summaries) != 1 || summaries[0].ID != noSummary.ID {
		t.Fatalf("ArticlesNeedingSummary = %+v, %v", summaries, err)
	}
	arts, err := st.ArticlesNeedingArt(ctx, 10)
	if err != nil || len(arts) != 1 || arts[0].ID != needsArt.ID {
		t.Fatalf("ArticlesNeedingArt = %+v, %v", arts, err)
	}
	ready, err := st.ArticlesReadyToPublish(ctx, 10)
	if err != nil || len(ready) != 1 || ready[0].ID != done.ID {
		t.Fatalf("ArticlesReadyToPublish = %+v, %v", ready, err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := store.Stats{
		Queued:          2,
		Transcripts:     3,
		AwaitingArticle: 1,
		Articles:        3,
		AdHocArticles:   1,
		AwaitingSummary: 1,
		AwaitingArt:     1,
		WithArt:         1,
		AwaitingPublish: 1,
	}
	if stats != want {
		t.Fatalf("unexpected stats\n got %+v\nwant %+v", stats, want)
	}

	if ok, err := st.MarkPublished(ctx, done.ID, "cms-1"); err != nil || !ok {
		t.Fatalf("MarkPublished = %v, %v", ok, err)
	}
	if ok, _ := st.MarkPublished(ctx, done.ID, "cms-2"); ok {
		t.Fatal("expected article to be published only once")
	}
}

func TestListArticlesFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.SeedArticle(t, st, "", "")
	second := testsupport.SeedArticle(t, st, "", "- done")
	second.Tone = "satirical"
	if err := st.UpdateArticle(ctx, second); err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}

	all, err := st.ListArticles(ctx, store.ArticleFilter{})
	if err != nil || len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v, %v", all, err)
	}
	satirical, err := st.ListArticles(ctx, store.ArticleFilter{Tone: "satirical"})
	if err != nil || len(satirical) != 1 || satirical[0].ID != second.ID {
		t.Fatalf("tone filter = %+v, %v", satirical, err)
	}
	unsummarized, err := st.ListArticles(ctx, store.ArticleFilter{WithoutSummary: true})
	if err != nil || len(unsummarized) != 1 || unsummarized[0].ID != first.ID {
		t.Fatalf("summary filter = %+v, %v", unsummarized, err)
	}
	paged, err := st.ListArticles(ctx, store.ArticleFilter{Limit: 1, Offset: 1})
	if err != nil || len(paged) != 1 || paged[0].ID != first.ID {
		t.Fatalf("paging = %+v, %v", paged, err)
	}
	if err := st.UpdateArticle(ctx, &store.Article{ID: 999, Title: "x", Content: "y"}); err == nil {
		t.Fatal("expected error updating missing article")
	}
}
