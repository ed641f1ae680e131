package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shorts/internal/config"
)

// WorkspacePaths captures canonical locations for a shorts workspace.
type WorkspacePaths struct {
	Root       string
	ConfigFile string
	EnvFile    string
	MetaDir    string
	OutputDir  string
	LogsDir    string
	StateFile  string
}

// Resolve determines the workspace root using the optional --workspace flag or
// the current working directory when the flag is empty.
func Resolve(workspaceFlag string) (WorkspacePaths, error) {
	var (
		root string
		err  error
	)

	if workspaceFlag != "" {
		root, err = filepath.Abs(workspaceFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	return newWorkspacePaths(root), nil
}

func newWorkspacePaths(root string) WorkspacePaths {
	metaDir := filepath.Join(root, ".shorts")
	return WorkspacePaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "shorts.yaml"),
		EnvFile:    filepath.Join(root, ".env"),
		MetaDir:    metaDir,
		OutputDir:  filepath.Join(root, "shorts", "videos"),
		LogsDir:    filepath.Join(root, "logs"),
		StateFile:  filepath.Join(metaDir, "render_state.json"),
	}
}

// ApplyConfig points the output directory at the configured location.
func ApplyConfig(wp WorkspacePaths, cfg config.Config) WorkspacePaths {
	if dir := strings.TrimSpace(cfg.Outputs.Dir); dir != "" {
		wp.OutputDir = resolveWorkspacePath(wp.Root, dir)
	}
	return wp
}

// Resolve turns a job-relative path into an absolute one under the root.
// Absolute paths and URLs are returned unchanged.
func (p WorkspacePaths) Resolve(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.Contains(value, "://") {
		return value
	}
	return resolveWorkspacePath(p.Root, value)
}

func resolveWorkspacePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the output/logs hierarchy alongside the hidden
// .shorts metadata directory.
func (p WorkspacePaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.OutputDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputFile returns the video path for a plan id.
func (p WorkspacePaths) OutputFile(planID string) string {
	return filepath.Join(p.OutputDir, "final_"+planID+".mp4")
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
