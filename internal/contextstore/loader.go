package contextstore

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"newsroom/internal/services"
)

//go:embed defaults
var embedded embed.FS

// Kind names a template family. It doubles as the directory name.
type Kind string

const (
	KindTone        Kind = "tone"
	KindArticleType Kind = "article_types"
	KindSlant       Kind = "slant"
	KindStyle       Kind = "style"
	KindMedium      Kind = "medium"
	KindAesthetic   Kind = "aesthetic"
	KindDirective   Kind = "directives"
	KindBio         Kind = "bios"
	KindDescription Kind = "descriptions"
)

// Directive names used by the summary and image stages.
const (
	DirectiveSummary  = "summary"
	DirectiveCondense = "condense"
)

// Loader reads templates from an fs.FS.
type Loader struct {
	fsys fs.FS
}

// Defaults returns the embedded template set.
func Defaults() fs.FS {
	sub, err := fs.Sub(embedded, "defaults")
	if err != nil {
		panic(fmt.Sprintf("contextstore: embedded defaults missing: %v", err))
	}
	return sub
}

// New returns a loader over the embedded defaults with userDir layered on
// top. An empty or missing userDir leaves only the defaults.
func New(userDir string) *Loader {
	layers := []fs.FS{}
	if dir := strings.TrimSpace(userDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			layers = append(layers, os.DirFS(dir))
		}
	}
	layers = append(layers, Defaults())
	return &Loader{fsys: overlay(layers)}
}

// NewFS returns a loader reading only from fsys.
func NewFS(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load returns the trimmed template for kind/value. Values are matched case
// insensitively with spaces and dashes folded to underscores. A missing or
// empty template is reported as services.ErrContextLoad.
func (l *Loader) Load(kind Kind, value string) (string, error) {
	name := FileName(value)
	if name == "" {
		return "", services.Wrap(services.ErrContextLoad, "context", string(kind), "empty template name", nil)
	}
	p := path.Join(string(kind), name+".txt")
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return "", services.Wrap(services.ErrContextLoad, "context", string(kind),
			fmt.Sprintf("read %s", p), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", services.Wrap(services.ErrContextLoad, "context", string(kind),
			fmt.Sprintf("%s is empty", p), nil)
	}
	return text, nil
}

// Has reports whether a template exists for kind/value.
func (l *Loader) Has(kind Kind, value string) bool {
	_, err := l.Load(kind, value)
	return err == nil
}

// Values lists the template values available for kind, sorted.
func (l *Loader) Values(kind Kind) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, string(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s templates: %w", kind, err)
	}
	values := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		values = append(values, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(values)
	return values, nil
}

// FileName normalizes a template value into its file stem.
func FileName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer(" ", "_", "-", "_").Replace(value)
	if strings.ContainsAny(value, `/\`) || strings.Contains(value, "..") {
		return ""
	}
	return value
}
