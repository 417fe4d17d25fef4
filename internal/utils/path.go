package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// snippetExtensions lists the file extensions the loader understands;
// a directory counts as a snippet source if it holds at least one.
var snippetExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// PathResolver provides robust path resolution for the snipmatch binary
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	configDir := getConfigDir(homeDir)

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      configDir,
	}

	log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		execPath, execDir, configDir)

	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "snipmatch")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "snipmatch")
		}
		return filepath.Join(homeDir, ".config", "snipmatch")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "snipmatch")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "snipmatch")
	default:
		return filepath.Join(homeDir, ".snipmatch")
	}
}

// GetSnippetsDir resolves the directory containing snippet files.
// It tries multiple locations in order of preference:
// 1. User-specified path (if absolute)
// 2. Relative to executable directory
// 3. Relative to current working directory
// 4. Common fallbacks (snippets/ next to the binary, config dir)
func (pr *PathResolver) GetSnippetsDir(userSpecifiedPath string) (string, error) {
	candidatePaths := pr.getSnippetDirCandidates(userSpecifiedPath)

	for _, path := range candidatePaths {
		if pr.isValidSnippetDir(path) {
			log.Debugf("Found valid snippet directory: %s", path)
			return path, nil
		}
		log.Debugf("Snippet directory candidate not valid: %s", path)
	}

	// If nothing found, return the most likely path for error reporting
	return filepath.Join(pr.executableDir, userSpecifiedPath), os.ErrNotExist
}

// isValidSnippetDir checks if a directory contains at least one loadable snippet file
func (pr *PathResolver) isValidSnippetDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	for _, ext := range snippetExtensions {
		matches, err := filepath.Glob(filepath.Join(path, "*"+ext))
		if err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}

// GetConfigPath returns the full path for a config file
// It ensures the config directory exists and handles read-only filesystem issues
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if pr.ensureConfigDir(pr.configDir) {
		return configPath, nil
	}

	// Fallback locations if config dir is not writable
	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".snipmatch"),
		filepath.Join(os.TempDir(), "snipmatch"),
		pr.executableDir,
	}

	for _, dir := range fallbackDirs {
		if pr.ensureConfigDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ensureConfigDir creates the directory if it doesn't exist and tests writability
func (pr *PathResolver) ensureConfigDir(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Debugf("Cannot create config directory %s: %v", dir, err)
		return false
	}

	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		log.Debugf("Config directory %s is not writable: %v", dir, err)
		return false
	}
	os.Remove(testFile)
	return true
}

func (pr *PathResolver) getSnippetDirCandidates(userSpecifiedPath string) []string {
	var candidates []string

	if userSpecifiedPath != "" {
		if filepath.IsAbs(userSpecifiedPath) {
			candidates = append(candidates, userSpecifiedPath)
		}
		candidates = append(candidates, filepath.Join(pr.executableDir, userSpecifiedPath))
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
		}
	}

	commonPaths := []string{
		filepath.Join(pr.executableDir, "snippets"),
		filepath.Join(pr.configDir, "snippets"),
	}
	if cwd, err := os.Getwd(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(cwd, "snippets"))
	}
	return append(candidates, commonPaths...)
}
