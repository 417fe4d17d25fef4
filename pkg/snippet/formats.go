package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFormat represents different snippet file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatTOML
	FormatYAML
	FormatJSON
)

// FormatInfo contains metadata about a snippet file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML snippet file",
		Extensions:  []string{".toml"},
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML snippet file",
		Extensions:  []string{".yaml", ".yml"},
	},
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON snippet file",
		Extensions:  []string{".json"},
	},
}

// DetectFileFormat detects the snippet format of a file by extension.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, candidate := range info.Extensions {
			if ext == candidate {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect snippet format for file %s", filename)
}

// ValidateSnippetFile checks that a file exists, is non-empty, and has a
// recognized extension.
func ValidateSnippetFile(filename string) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory, not a snippet file", filename)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("snippet file %s is empty", filename)
	}
	if _, err := DetectFileFormat(filename); err != nil {
		return err
	}
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ListSupportedFormats returns all supported formats
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, info := range supportedFormats {
		formats = append(formats, info)
	}
	return formats
}

// SupportedExtensions returns every recognized snippet file extension.
func SupportedExtensions() []string {
	var exts []string
	for _, info := range supportedFormats {
		exts = append(exts, info.Extensions...)
	}
	return exts
}
