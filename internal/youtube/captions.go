package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"newsroom/internal/language"
	"newsroom/internal/logging"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		Tracklist struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// timedText covers both the legacy <transcript><text> layout and the srv3
// <timedtext><body><p> layout.
type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
	Body struct {
		Paragraphs []struct {
			Text     string   `xml:",chardata"`
			Segments []string `xml:"s"`
		} `xml:"p"`
	} `xml:"body"`
}

// FetchCaptions returns the caption text of videoID and the language of the
// chosen track.
func (c *Client) FetchCaptions(ctx context.Context, videoID string) (string, string, error) {
	watchURL := c.watchBase + "/watch?v=" + url.QueryEscape(videoID)
	page, err := c.get(ctx, watchURL, map[string]string{
		"Accept-Language": c.language + ";q=0.9",
		"Accept":          "text/html,application/xhtml+xml",
	}, maxWatchPageBytes)
	if err != nil {
		return "", "", fmt.Errorf("watch page: %w", err)
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return "", "", err
	}
	track, ok := pickBestTrack(tracks, c.language)
	if !ok {
		return "", "", errors.New("all caption tracks require a browser token")
	}

	raw, err := c.get(ctx, track.BaseURL, nil, maxTimedTextBytes)
	if err != nil {
		return "", "", fmt.Errorf("timedtext: %w", err)
	}
	text, err := parseTimedText(raw)
	if err != nil {
		return "", "", err
	}
	if text == "" {
		return "", "", errors.New("caption track is empty")
	}
	c.logger.Debug("captions fetched",
		logging.String("video_id", videoID),
		logging.String("language", track.LanguageCode),
		logging.String("kind", track.Kind),
		logging.Int("chars", len(text)),
	)
	return text, track.LanguageCode, nil
}

func captionTracks(page []byte) ([]captionTrack, error) {
	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse is truncated")
	}
	var resp playerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if resp.Captions == nil || len(resp.Captions.Tracklist.CaptionTracks) == 0 {
		if resp.PlayabilityStatus != nil && resp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", resp.PlayabilityStatus.Reason)
		}
		return nil, errors.New("video has no caption tracks")
	}
	return resp.Captions.Tracklist.CaptionTracks, nil
}

// extractJSON returns the JSON object starting at b[0] by tracking brace
// depth outside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i, ch := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports tracks that only a browser session can download.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in lang, then an auto-generated track
// in lang, then any track sharing the base language, then the first usable
// track.
func pickBestTrack(tracks []captionTrack, lang string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, t := range usable {
		if t.LanguageCode == lang && t.Kind != "asr" {
			return t, true
		}
	}
	for _, t := range usable {
		if t.LanguageCode == lang {
			return t, true
		}
	}
	for _, t := range usable {
		if language.Same(t.LanguageCode, lang) {
			return t, true
		}
	}
	return usable[0], true
}

func parseTimedText(raw []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}
	var parts []string
	for _, line := range tt.Lines {
		parts = appendCaption(parts, line.Text)
	}
	for _, p := range tt.Body.Paragraphs {
		if len(p.Segments) > 0 {
			parts = appendCaption(parts, strings.Join(p.Segments, ""))
			continue
		}
		parts = appendCaption(parts, p.Text)
	}
	return strings.Join(parts, " "), nil
}

// appendCaption adds a caption line after undoing the double HTML escaping
// YouTube applies to caption text.
func appendCaption(parts []string, text string) []string {
	text = html.UnescapeString(html.UnescapeString(text))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return parts
	}
	return append(parts, text)
}
