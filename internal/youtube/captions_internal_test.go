package youtube

import "testing"

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "https://x/tt?a=1&exp=xpe", LanguageCode: "en"},
		{BaseURL: "https://x/tt?a=2", LanguageCode: "fr"},
		{BaseURL: "https://x/tt?a=3", LanguageCode: "en-US", Kind: "asr"},
	}
	got, ok := pickBestTrack(tracks, "en")
	if !ok || got.LanguageCode != "en-US" {
		t.Fatalf("expected base-language match, got %+v %v", got, ok)
	}
	got, ok = pickBestTrack(tracks, "de")
	if !ok || got.LanguageCode != "fr" {
		t.Fatalf("expected first usable track, got %+v", got)
	}
	if _, ok := pickBestTrack(tracks[:1], "en"); ok {
		t.Fatal("expected token-only tracks to be rejected")
	}
}

func TestExtractJSONHonoursStrings(t *testing.T) {
	raw := []byte(`{"a":"}\"{","b":{"c":1}};rest`)
	got := extractJSON(raw)
	if string(got) != `{"a":"}\"{","b":{"c":1}}` {
		t.Fatalf("unexpected extraction %s", got)
	}
	if extractJSON([]byte(`{"open":`)) != nil {
		t.Fatal("expected nil for truncated input")
	}
}
