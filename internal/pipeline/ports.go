package pipeline

import (
	"newsroom/internal/articles"
	"newsroom/internal/discovery"
	"newsroom/internal/images"
	"newsroom/internal/publish"
	"newsroom/internal/transcripts"
)

// External capabilities the stages depend on. Each is declared by the
// package that consumes it.
type (
	ChannelLister    = discovery.ChannelLister
	CaptionSource    = transcripts.CaptionSource
	AudioTranscriber = transcripts.AudioTranscriber
	TextGenerator    = articles.TextGenerator
	ImageGenerator   = images.ImageGenerator
	Sink             = publish.Sink
)
