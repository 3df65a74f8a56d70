package api

import (
	"fmt"
	"strings"
	"time"

	"newsroom/internal/store"
)

// FromArticle converts a store article. Content is omitted unless full is set.
func FromArticle(article *store.Article, full bool) Article {
	if article == nil {
		return Article{}
	}
	out := Article{
		ID:           article.ID,
		VideoID:      article.VideoID,
		Title:        article.Title,
		BulletPoints: article.BulletPoints,
		AuthorID:     article.AuthorID,
		Tone:         article.Tone,
		ArticleType:  article.ArticleType,
		Published:    article.PublishedRef != "",
		PublishedRef: article.PublishedRef,
		CreatedAt:    formatTime(article.CreatedAt),
		UpdatedAt:    formatTime(article.UpdatedAt),
	}
	if full {
		out.Content = article.Content
	}
	return out
}

// FromArticles converts a slice of articles without their content.
func FromArticles(articles []*store.Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, FromArticle(a, false))
	}
	return out
}

// FromArt converts featured art. Inline data URLs are replaced by the
// daemon image link.
func FromArt(art *store.Art) *Art {
	if art == nil {
		return nil
	}
	out := &Art{
		ID:        art.ID,
		ArticleID: art.ArticleID,
		ArtistID:  art.ArtistID,
		Title:     art.Title,
		Prompt:    art.Prompt,
		Snippet:   art.Snippet,
		ImageURL:  art.ImageURL,
		Medium:    art.Medium,
		Aesthetic: art.Aesthetic,
		Style:     art.Style,
		Model:     art.Model,
		CreatedAt: formatTime(art.CreatedAt),
	}
	if IsInline(art.ImageURL) {
		out.Inline = true
		out.ImageURL = ArtImagePath(art.ID)
	}
	return out
}

// ArtImagePath returns the daemon path serving the image bytes for art id.
func ArtImagePath(id int64) string {
	return fmt.Sprintf("/api/art/%d/image", id)
}

// IsInline reports whether an image URL carries the image itself.
func IsInline(imageURL string) bool {
	return strings.HasPrefix(imageURL, "data:")
}

// FromTranscript converts a cached transcript. Content is omitted unless
// full is set.
func FromTranscript(t *store.Transcript, full bool) Transcript {
	if t == nil {
		return Transcript{}
	}
	out := Transcript{
		VideoID:   t.VideoID,
		Source:    t.Source,
		Language:  t.Language,
		Chars:     len(t.Content),
		FetchedAt: formatTime(t.FetchedAt),
	}
	if full {
		out.Content = t.Content
	}
	return out
}

// FromQueueEntry converts a queued video reference.
func FromQueueEntry(ref store.VideoRef) QueueEntry {
	return QueueEntry{
		Seq:          ref.Seq,
		VideoID:      ref.VideoID,
		Source:       ref.Source,
		DiscoveredAt: formatTime(ref.DiscoveredAt),
	}
}

// FromStats converts the store counters.
func FromStats(s store.Stats) QueueStats {
	return QueueStats{
		Queued:          s.Queued,
		Transcripts:     s.Transcripts,
		AwaitingArticle: s.AwaitingArticle,
		Articles:        s.Articles,
		AwaitingSummary: s.AwaitingSummary,
		AwaitingArt:     s.AwaitingArt,
		WithArt:         s.WithArt,
		AwaitingPublish: s.AwaitingPublish,
		Published:       s.Published,
		AdHocArticles:   s.AdHocArticles,
		StaleQueued:     s.QueueStaleCached,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
