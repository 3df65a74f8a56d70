// Package images produces a featured image for each summarized article.
//
// Each image takes two model calls. The article's bullet points are first
// condensed into a short scene description, which is then rendered by the
// image model in a medium, aesthetic and style sampled from the artist's
// trait sets. The Art row is written only after both calls succeed.
package images
