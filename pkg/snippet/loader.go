package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// snippetFile is the on-disk shape shared by all formats:
// a single "snippets" list of trigger/content pairs.
type snippetFile struct {
	Snippets []Snippet `toml:"snippets" yaml:"snippets"`
}

// LoadFile reads one snippet file, dispatching on its extension. Every
// returned snippet carries the file path as its Source.
func LoadFile(path string) ([]Snippet, error) {
	if err := ValidateSnippetFile(path); err != nil {
		return nil, err
	}
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	var snippets []Snippet
	switch format {
	case FormatTOML:
		snippets, err = decodeTOML(path)
	case FormatYAML:
		snippets, err = decodeYAML(path)
	case FormatJSON:
		snippets, err = decodeJSON(path)
	default:
		return nil, fmt.Errorf("unsupported snippet format for %s", path)
	}
	if err != nil {
		return nil, err
	}

	for i := range snippets {
		snippets[i].Source = path
	}
	log.Debugf("Loaded %d snippets from %s", len(snippets), path)
	return snippets, nil
}

func decodeTOML(path string) ([]Snippet, error) {
	var file snippetFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse TOML snippets from %s: %w", path, err)
	}
	return file.Snippets, nil
}

func decodeYAML(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var file snippetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML snippets from %s: %w", path, err)
	}
	return file.Snippets, nil
}

func decodeJSON(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}
	list := gjson.GetBytes(data, "snippets")
	if !list.Exists() || !list.IsArray() {
		return nil, fmt.Errorf("%s has no \"snippets\" array", path)
	}

	var snippets []Snippet
	list.ForEach(func(_, item gjson.Result) bool {
		snippets = append(snippets, Snippet{
			Trigger: item.Get("trigger").String(),
			Content: item.Get("content").String(),
		})
		return true
	})
	return snippets, nil
}

// LoadDir loads every recognized snippet file in dir, one level deep, in
// lexical filename order so later files override earlier ones on trigger
// collisions. Files that fail to parse are skipped with a logged error;
// the rest of the directory still loads.
func LoadDir(dir string) ([]Snippet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippet directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := DetectFileFormat(entry.Name()); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var snippets []Snippet
	for _, name := range names {
		path := filepath.Join(dir, name)
		loaded, err := LoadFile(path)
		if err != nil {
			log.Errorf("Skipping snippet file %s: %v", path, err)
			continue
		}
		snippets = append(snippets, loaded...)
	}
	return snippets, nil
}

// LoadPath loads a snippet source that may be a file or a directory.
func LoadPath(path string) ([]Snippet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("snippet path %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// sourceLabel shortens a path for log lines: directory plus filename.
func sourceLabel(path string) string {
	dir, file := filepath.Split(path)
	parent := filepath.Base(strings.TrimSuffix(dir, string(filepath.Separator)))
	if parent == "." || parent == "" {
		return file
	}
	return filepath.Join(parent, file)
}
