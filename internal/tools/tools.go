// Package tools locates the external media binaries the compositor drives.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Names of the binaries the compositor shells out to.
const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

// ToolInfo captures availability and version details for an external tool.
type ToolInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// ErrNotFound is returned when a tool is neither overridden nor on PATH.
var ErrNotFound = errors.New("tool not found")

var lookPath = exec.LookPath

// Find resolves the binary for name. SHORTS_FFMPEG and SHORTS_FFPROBE
// override the PATH lookup.
func Find(name string) (string, error) {
	if override := strings.TrimSpace(os.Getenv(envKey(name))); override != "" {
		return override, nil
	}
	path, err := lookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}
	return path, nil
}

// Probe discovers availability and version information for ffmpeg and ffprobe.
func Probe(ctx context.Context) map[string]ToolInfo {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	names := []string{FFmpeg, FFprobe}
	result := make(map[string]ToolInfo, len(names))
	for _, name := range names {
		result[name] = probeOne(ctx, name)
	}
	return result
}

func probeOne(ctx context.Context, name string) ToolInfo {
	path, err := Find(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ToolInfo{Name: name, Available: false, Error: "not found"}
		}
		return ToolInfo{Name: name, Available: false, Error: err.Error()}
	}

	version, err := readVersion(ctx, path)
	if err != nil {
		return ToolInfo{Name: name, Path: path, Available: true, Error: err.Error()}
	}

	return ToolInfo{Name: name, Path: path, Version: version, Available: true}
}

func readVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return normalizeVersionLine(firstLine(strings.TrimSpace(string(output)))), nil
}

func envKey(name string) string {
	return "SHORTS_" + strings.ToUpper(name)
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// normalizeVersionLine extracts "6.1.1" from "ffmpeg version 6.1.1 Copyright ...".
func normalizeVersionLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[1] == "version" {
		return fields[2]
	}
	return line
}
