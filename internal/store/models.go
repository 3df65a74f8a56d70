package store

import "time"

// Transcript sources recorded with each cached transcript.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// VideoRef is a queued video identifier.
type VideoRef struct {
	Seq          int64
	VideoID      string
	Source       string
	DiscoveredAt time.Time
}

// Transcript is the cached text for one video. Records are never updated
// once written.
type Transcript struct {
	VideoID   string
	Content   string
	Source    string
	Language  string
	FetchedAt time.Time
}

// Article is a generated HTML article. VideoID is empty for ad-hoc articles.
type Article struct {
	ID           int64
	VideoID      string
	Title        string
	Content      string
	BulletPoints string
	AuthorID     string
	Tone         string
	ArticleType  string
	PublishedRef string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSummary reports whether the article already carries bullet points.
func (a *Article) HasSummary() bool {
	return a != nil && a.BulletPoints != ""
}

// Art is the featured image produced for an article.
type Art struct {
	ID        int64
	ArticleID int64
	ArtistID  string
	Title     string
	Prompt    string
	Snippet   string
	ImageURL  string
	Medium    string
	Aesthetic string
	Style     string
	Model     string
	CreatedAt time.Time
}

// ArticleFilter narrows ListArticles. Zero values disable a filter.
type ArticleFilter struct {
	AuthorID       string
	Tone           string
	ArticleType    string
	WithoutSummary bool
	WithoutArt     bool
	Unpublished    bool
	Limit          int
	Offset         int
}

// Stats summarizes how many records satisfy each stage predicate.
type Stats struct {
	Queued           int `json:"queued"`
	Transcripts      int `json:"transcripts"`
	AwaitingArticle  int `json:"awaiting_article"`
	Articles         int `json:"articles"`
	AwaitingSummary  int `json:"awaiting_summary"`
	AwaitingArt      int `json:"awaiting_art"`
	WithArt          int `json:"with_art"`
	AwaitingPublish  int `json:"awaiting_publish"`
	Published        int `json:"published"`
	AdHocArticles    int `json:"ad_hoc_articles"`
	QueueStaleCached int `json:"queue_stale_cached"`
}
