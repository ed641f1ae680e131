package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string            `json:"codec_type"`
	CodecName string            `json:"codec_name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Duration  string            `json:"duration"`
	Tags      map[string]string `json:"tags"`
}

// ProbeResult is the subset of ffprobe output the compositor needs.
type ProbeResult struct {
	FormatName      string
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
}

// Prober runs ffprobe through a Runner.
type Prober struct {
	Runner Runner
	Path   string
}

// NewProber returns a prober using the given ffprobe binary. An empty path
// falls back to "ffprobe" on PATH.
func NewProber(runner Runner, ffprobePath string) *Prober {
	if runner == nil {
		runner = CmdRunner{}
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{Runner: runner, Path: ffprobePath}
}

// Probe inspects target and returns its duration and first video stream
// geometry. Rotated streams report their displayed orientation.
func (p *Prober) Probe(ctx context.Context, target string) (ProbeResult, error) {
	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		target,
	}

	result, err := p.Runner.Run(ctx, p.Path, args, RunOptions{})
	if err != nil {
		msg := strings.TrimSpace(string(result.Stderr))
		if msg != "" {
			return ProbeResult{}, fmt.Errorf("ffprobe %s: %w: %s", target, err, msg)
		}
		return ProbeResult{}, fmt.Errorf("ffprobe %s: %w", target, err)
	}
	if len(result.Stdout) == 0 {
		return ProbeResult{}, errors.New("ffprobe produced no output")
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return ProbeResult{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	out := ProbeResult{
		FormatName:      parsed.Format.FormatName,
		DurationSeconds: parseSeconds(parsed.Format.Duration),
	}
	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			if out.HasVideo {
				continue
			}
			out.HasVideo = true
			out.Width, out.Height = stream.Width, stream.Height
			if isQuarterTurn(stream.Tags["rotate"]) {
				out.Width, out.Height = out.Height, out.Width
			}
			if out.DurationSeconds == 0 {
				out.DurationSeconds = parseSeconds(stream.Duration)
			}
		case "audio":
			out.HasAudio = true
			if out.DurationSeconds == 0 {
				out.DurationSeconds = parseSeconds(stream.Duration)
			}
		}
	}
	return out, nil
}

// Duration returns only the container duration of target.
func (p *Prober) Duration(ctx context.Context, target string) (float64, error) {
	res, err := p.Probe(ctx, target)
	if err != nil {
		return 0, err
	}
	if res.DurationSeconds <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", target)
	}
	return res.DurationSeconds, nil
}

func parseSeconds(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func isQuarterTurn(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "90", "-90", "270", "-270":
		return true
	}
	return false
}
