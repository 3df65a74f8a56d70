package contextstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"newsroom/internal/contextstore"
	"newsroom/internal/services"
)

func TestDefaultsCoverEveryEnumeratedValue(t *testing.T) {
	loader := contextstore.New("")
	tones := []string{"formal", "casual", "professional", "friendly", "investigative", "urgent",
		"satirical", "empathetic", "analytical", "conversational", "authoritative", "critical"}
	for _, tone := range tones {
		if !loader.Has(contextstore.KindTone, tone) {
			t.Errorf("missing tone template %q", tone)
		}
	}
	types := []string{"summary", "op_ed", "critical", "news", "feature", "profile", "investigative", "editorial"}
	for _, articleType := range types {
		if !loader.Has(contextstore.KindArticleType, articleType) {
			t.Errorf("missing article type template %q", articleType)
		}
	}
	for _, directive := range []string{contextstore.DirectiveSummary, contextstore.DirectiveCondense} {
		if !loader.Has(contextstore.KindDirective, directive) {
			t.Errorf("missing directive %q", directive)
		}
	}
}

func TestLoadMissingTemplateIsContextLoadError(t *testing.T) {
	loader := contextstore.NewFS(fstest.MapFS{
		"tone/formal.txt": {Data: []byte("be formal")},
		"tone/blank.txt":  {Data: []byte("  \n")},
	})

	text, err := loader.Load(contextstore.KindTone, "Formal")
	if err != nil || text != "be formal" {
		t.Fatalf("Load = %q, %v", text, err)
	}
	for _, value := range []string{"sarcastic", "blank", "", "../tone/formal"} {
		_, err := loader.Load(contextstore.KindTone, value)
		if !errors.Is(err, services.ErrContextLoad) {
			t.Fatalf("Load(%q) expected ErrContextLoad, got %v", value, err)
		}
	}
}

func TestUserDirectoryShadowsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "tone"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tone", "formal.txt"), []byte("custom formal\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tone", "wry.txt"), []byte("custom wry"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := contextstore.New(dir)
	text, err := loader.Load(contextstore.KindTone, "formal")
	if err != nil || text != "custom formal" {
		t.Fatalf("expected user override, got %q, %v", text, err)
	}
	if _, err := loader.Load(contextstore.KindTone, "casual"); err != nil {
		t.Fatalf("expected embedded fallback for casual: %v", err)
	}

	values, err := loader.Values(contextstore.KindTone)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 13 {
		t.Fatalf("expected 12 defaults plus one custom tone, got %d: %v", len(values), values)
	}
}

func TestFileNameNormalizes(t *testing.T) {
	cases := map[string]string{
		"Op-Ed":           "op_ed",
		" retro futurist": "retro_futurist",
		"a/b":             "",
	}
	for in, want := range cases {
		if got := contextstore.FileName(in); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
