package api

import (
	"newsroom/internal/pipeline"
	"newsroom/internal/stage"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Article describes a generated article.
type Article struct {
	ID           int64  `json:"id"`
	VideoID      string `json:"videoId,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content,omitempty"`
	BulletPoints string `json:"bulletPoints,omitempty"`
	AuthorID     string `json:"authorId"`
	Tone         string `json:"tone"`
	ArticleType  string `json:"articleType"`
	Published    bool   `json:"published"`
	PublishedRef string `json:"publishedRef,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
	Art          *Art   `json:"art,omitempty"`
}

// Art describes the featured image for an article.
type Art struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"articleId"`
	ArtistID  string `json:"artistId"`
	Title     string `json:"title"`
	Prompt    string `json:"prompt"`
	Snippet   string `json:"snippet"`
	ImageURL  string `json:"imageUrl"`
	Inline    bool   `json:"inline"`
	Medium    string `json:"medium"`
	Aesthetic string `json:"aesthetic"`
	Style     string `json:"style"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Transcript describes a cached transcript.
type Transcript struct {
	VideoID   string `json:"videoId"`
	Source    string `json:"source"`
	Language  string `json:"language,omitempty"`
	Chars     int    `json:"chars"`
	Content   string `json:"content,omitempty"`
	FetchedAt string `json:"fetchedAt,omitempty"`
}

// QueueEntry describes a queued video id.
type QueueEntry struct {
	Seq          int64  `json:"seq"`
	VideoID      string `json:"videoId"`
	Source       string `json:"source"`
	DiscoveredAt string `json:"discoveredAt,omitempty"`
}

// QueueStats mirrors the store counters.
type QueueStats struct {
	Queued          int `json:"queued"`
	Transcripts     int `json:"transcripts"`
	AwaitingArticle int `json:"awaitingArticle"`
	Articles        int `json:"articles"`
	AwaitingSummary int `json:"awaitingSummary"`
	AwaitingArt     int `json:"awaitingArt"`
	WithArt         int `json:"withArt"`
	AwaitingPublish int `json:"awaitingPublish"`
	Published       int `json:"published"`
	AdHocArticles   int `json:"adHocArticles"`
	StaleQueued     int `json:"staleQueued"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool                `json:"running"`
	PID          int                 `json:"pid"`
	DatabasePath string              `json:"databasePath"`
	LockFilePath string              `json:"lockFilePath"`
	Schedule     string              `json:"schedule"`
	NextRun      string              `json:"nextRun,omitempty"`
	Stats        QueueStats          `json:"stats"`
	LastRun      *pipeline.RunReport `json:"lastRun,omitempty"`
}

// HealthResponse wraps readiness checks.
type HealthResponse struct {
	Ready  bool           `json:"ready"`
	Checks []stage.Health `json:"checks"`
}

// BatchRequest is the body of the bulk stage endpoints. A zero count uses the
// configured batch size.
type BatchRequest struct {
	Count int `json:"count"`
}

// WriteRequest is the body of POST /api/articles/write.
type WriteRequest struct {
	Count       int    `json:"count"`
	Journalist  string `json:"journalist"`
	Tone        string `json:"tone"`
	ArticleType string `json:"articleType"`
}

// ImageRequest is the body of POST /api/images/generate.
type ImageRequest struct {
	Count     int    `json:"count"`
	Medium    string `json:"medium"`
	Aesthetic string `json:"aesthetic"`
	Style     string `json:"style"`
}

// QueueBuildResponse reports a discovery pass.
type QueueBuildResponse struct {
	Added     int `json:"added"`
	QueueSize int `json:"queueSize"`
}

// ArticleListResponse wraps a page of articles.
type ArticleListResponse struct {
	Items []Article `json:"items"`
}

// ArticleResponse wraps a single article.
type ArticleResponse struct {
	Item Article `json:"item"`
}
