package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPathManager implements output path management
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// OutputDir returns the per-run output directory under baseDir.
func (p *DefaultPathManager) OutputDir(baseDir, runName string) string {
	name := strings.ToLower(strings.TrimSpace(runName))
	if name == "" {
		name = "scan"
	}
	name = strings.ReplaceAll(name, " ", "_")

	return filepath.Join(baseDir, fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405")))
}

// EnsureDirectoryExists creates the parent directory if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
