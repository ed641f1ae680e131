package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shorts/internal/compose"
	"shorts/internal/config"
)

// BuildFFmpegArgs assembles the ffmpeg CLI arguments that encode plan into
// outputPath. Segment sources and the narration path must already be local.
func BuildFFmpegArgs(plan compose.RenderPlan, graph FilterGraph, outputPath string, cfg config.Config) ([]string, error) {
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("output path is empty")
	}
	if strings.TrimSpace(graph.Filter) == "" || graph.VideoOut == "" {
		return nil, errors.New("video filter graph is empty")
	}
	if plan.Duration() <= 0 {
		return nil, errors.New("plan has no duration")
	}

	args := []string{
		"-hide_banner",
		"-y",
	}

	for i, seg := range plan.Timeline.Segments {
		source := strings.TrimSpace(seg.SourceRef)
		if source == "" {
			return nil, fmt.Errorf("segment %d source path is empty", i)
		}
		args = append(args,
			"-ss", formatFloat(seg.TrimStart),
			"-t", formatFloat(seg.Duration()),
			"-i", source,
		)
	}

	hasNarration := plan.Audio.Mode != compose.AudioNone && plan.Audio.Narration != nil
	if hasNarration {
		ref := strings.TrimSpace(plan.Audio.Narration.AudioRef)
		if ref == "" {
			return nil, errors.New("narration path is empty")
		}
		args = append(args, "-i", ref)
	}

	args = append(args,
		"-filter_complex", graph.Filter,
		"-map", "["+graph.VideoOut+"]",
	)

	if hasNarration {
		args = append(args, "-map", fmt.Sprintf("%d:a:0", len(plan.Timeline.Segments)))
	}

	videoCodec := strings.TrimSpace(cfg.Video.Codec)
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	args = append(args, "-c:v", videoCodec)

	if preset := strings.TrimSpace(cfg.Video.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	if cfg.Video.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(cfg.Video.CRF))
	}
	args = append(args, "-pix_fmt", "yuv420p", "-r", strconv.Itoa(cfg.Video.FPS))

	if hasNarration {
		if acodec := strings.TrimSpace(cfg.Audio.ACodec); acodec != "" {
			args = append(args, "-c:a", acodec)
		}
		if cfg.Audio.BitrateKbps > 0 {
			args = append(args, "-b:a", fmt.Sprintf("%dk", cfg.Audio.BitrateKbps))
		}
		if cfg.Audio.SampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(cfg.Audio.SampleRate))
		}
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-t", formatFloat(plan.Duration()),
		"-movflags", "+faststart",
		outputPath,
	)

	return args, nil
}
