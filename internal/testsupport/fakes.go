package testsupport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"newsroom/internal/services/imagegen"
)

// ErrFake is returned by fakes configured to fail.
var ErrFake = errors.New("fake failure")

// FakeChannel lists a fixed set of video ids.
type FakeChannel struct {
	mu    sync.Mutex
	IDs   []string
	Err   error
	Calls int
}

// ListVideos returns up to limit ids.
func (f *FakeChannel) ListVideos(_ context.Context, _ string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	ids := append([]string(nil), f.IDs...)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// FakeCaptions serves caption text per video id. Ids listed in Fail return
// ErrFake; ids missing from Text also fail.
type FakeCaptions struct {
	mu    sync.Mutex
	Text  map[string]string
	Fail  map[string]bool
	Calls map[string]int
	// Block makes FetchCaptions wait for the context to end for these ids.
	Block map[string]bool
}

// FetchCaptions implements the caption source capability.
func (f *FakeCaptions) FetchCaptions(ctx context.Context, videoID string) (string, string, error) {
	f.mu.Lock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[videoID]++
	block := f.Block[videoID]
	text, ok := f.Text[videoID]
	fail := f.Fail[videoID]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	if fail || !ok {
		return "", "", fmt.Errorf("captions %s: %w", videoID, ErrFake)
	}
	return text, "en", nil
}

// CallCount returns how often id was requested.
func (f *FakeCaptions) CallCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[id]
}

// FakeTranscriber is the audio fallback.
type FakeTranscriber struct {
	mu    sync.Mutex
	Text  map[string]string
	Calls map[string]int
}

// TranscribeVideo implements the audio transcriber capability.
func (f *FakeTranscriber) TranscribeVideo(_ context.Context, videoID string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[videoID]++
	text, ok := f.Text[videoID]
	if !ok {
		return "", "", fmt.Errorf("transcribe %s: %w", videoID, ErrFake)
	}
	return text, "en", nil
}

// CallCount returns how often id was transcribed.
func (f *FakeTranscriber) CallCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[id]
}

// FakeText answers text and JSON completions. JSON replies echo a title
// derived from the first line of the user prompt unless JSONReply is set.
// FailWhen makes any prompt containing the substring fail. Delay holds every
// reply back without watching the context, like a slow upstream.
type FakeText struct {
	mu        sync.Mutex
	JSONReply string
	TextReply string
	FailWhen  string
	Delay     time.Duration
	Prompts   []string
}

// CompleteJSON implements the text generator capability.
func (f *FakeText) CompleteJSON(_ context.Context, system, user string) (string, error) {
	if err := f.record(system, user); err != nil {
		return "", err
	}
	if f.JSONReply != "" {
		return f.JSONReply, nil
	}
	return `{"title":"Generated headline","body":"First paragraph.\n\nSecond paragraph with <b>markup</b> & more."}`, nil
}

// CompleteText implements the text generator capability.
func (f *FakeText) CompleteText(_ context.Context, system, user string) (string, error) {
	if err := f.record(system, user); err != nil {
		return "", err
	}
	if f.TextReply != "" {
		return f.TextReply, nil
	}
	return "- The council approved the budget.\n- Residents raised concerns about transit.", nil
}

func (f *FakeText) record(system, user string) error {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, system+"\n---\n"+user)
	if f.FailWhen != "" && (strings.Contains(user, f.FailWhen) || strings.Contains(system, f.FailWhen)) {
		return fmt.Errorf("completion: %w", ErrFake)
	}
	return nil
}

// PromptCount returns the number of completions requested.
func (f *FakeText) PromptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// FakeImages returns a constant image URL.
type FakeImages struct {
	mu      sync.Mutex
	URL     string
	Err     error
	Prompts []string
}

// GenerateImage implements the image generator capability.
func (f *FakeImages) GenerateImage(_ context.Context, prompt string) (imagegen.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return imagegen.Result{}, f.Err
	}
	url := f.URL
	if url == "" {
		url = "https://images.example/generated.png"
	}
	return imagegen.Result{URL: url, Model: "fake-image-model"}, nil
}

// PromptCount returns the number of images requested.
func (f *FakeImages) PromptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// FakeSink records published articles.
type FakeSink struct {
	mu        sync.Mutex
	Published []string
	Err       error
}

// Publish implements the sink capability.
func (f *FakeSink) Publish(_ context.Context, title, _ string, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Published = append(f.Published, title)
	return fmt.Sprintf("post-%d", len(f.Published)), nil
}
