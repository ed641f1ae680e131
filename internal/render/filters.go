package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"shorts/internal/compose"
	"shorts/internal/config"
)

// FilterGraph is a complete -filter_complex value and the label of its final
// video stream.
type FilterGraph struct {
	Filter   string
	VideoOut string
}

// BuildFilterGraph constructs the ffmpeg filter graph for a plan. Segment i
// is expected on input i, already trimmed by input seeking.
func BuildFilterGraph(plan compose.RenderPlan, cfg config.Config) (FilterGraph, error) {
	segments := plan.Timeline.Segments
	if len(segments) == 0 {
		return FilterGraph{}, errors.New("render plan has no segments")
	}
	if cfg.Video.FPS <= 0 {
		return FilterGraph{}, errors.New("invalid video fps")
	}
	canvas := plan.Canvas
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return FilterGraph{}, errors.New("invalid canvas dimensions")
	}

	var chains []string
	labels := make([]string, len(segments))
	for i, seg := range segments {
		chain, err := segmentChain(seg, canvas, cfg.Video.FPS)
		if err != nil {
			return FilterGraph{}, fmt.Errorf("segment %d: %w", i, err)
		}
		labels[i] = fmt.Sprintf("v%d", i)
		chains = append(chains, fmt.Sprintf("[%d:v]%s[%s]", i, chain, labels[i]))
	}

	current := labels[0]
	if len(labels) > 1 {
		current = "base"
		chains = append(chains, concatChain(labels, current))
	}

	if loops := plan.Audio.Loops; loops > 1 {
		copies := make([]string, loops)
		for i := range copies {
			copies[i] = fmt.Sprintf("l%d", i)
		}
		chains = append(chains, fmt.Sprintf("[%s]split=%d%s", current, loops, bracket(copies)))
		current = "looped"
		chains = append(chains, concatChain(copies, current))
	}

	if overlays := captionFilters(plan.Captions, canvas, cfg.Captions); len(overlays) > 0 {
		chains = append(chains, fmt.Sprintf("[%s]%s[vout]", current, strings.Join(overlays, ",")))
		current = "vout"
	}

	return FilterGraph{Filter: strings.Join(chains, ";"), VideoOut: current}, nil
}

func segmentChain(seg compose.RenderSegment, canvas compose.Canvas, fps int) (string, error) {
	if seg.ScaledWidth <= 0 || seg.ScaledHeight <= 0 {
		return "", errors.New("segment has no layout fit")
	}
	filters := []string{
		"setpts=PTS-STARTPTS",
		fmt.Sprintf("scale=w=%d:h=%d:flags=lanczos", seg.ScaledWidth, seg.ScaledHeight),
		fmt.Sprintf("pad=w=%d:h=%d:x=%d:y=%d:color=%s", canvas.Width, canvas.Height, seg.PadLeft, seg.PadTop, compose.PadColor),
		"setsar=1",
		fmt.Sprintf("fps=%d", fps),
	}
	return strings.Join(filters, ","), nil
}

func concatChain(inputs []string, out string) string {
	return fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]", bracket(inputs), len(inputs), out)
}

func bracket(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString("[")
		b.WriteString(l)
		b.WriteString("]")
	}
	return b.String()
}

func captionFilters(blocks []compose.CaptionBlock, canvas compose.Canvas, style config.CaptionsConfig) []string {
	var filters []string
	maxChars := wrapWidth(canvas.Width, style.FontSize)
	for _, block := range blocks {
		text := wrapText(strings.TrimSpace(block.Text), maxChars)
		if text == "" {
			continue
		}
		dt := buildDrawText(drawTextOptions{
			Text:         text,
			Start:        block.StartSec,
			End:          block.EndSec,
			FontSize:     style.FontSize,
			FontFile:     style.FontFile,
			FontColor:    style.Color,
			OutlineColor: style.OutlineColor,
			OutlineWidth: style.OutlineWidthValue(),
			XExpr:        "(w-text_w)/2",
			YExpr:        subtractMargin("h-text_h", style.MarginBottom),
		})
		if dt != "" {
			filters = append(filters, dt)
		}
	}
	return filters
}

type drawTextOptions struct {
	Text         string
	Start        float64
	End          float64
	FontSize     int
	FontFile     string
	FontColor    string
	OutlineColor string
	OutlineWidth int
	XExpr        string
	YExpr        string
}

func buildDrawText(opts drawTextOptions) string {
	if opts.End <= opts.Start {
		return ""
	}

	outlineWidth := opts.OutlineWidth
	if outlineWidth < 0 {
		outlineWidth = 0
	}

	values := []string{
		fmt.Sprintf("text='%s'", escapeDrawText(opts.Text)),
		fmt.Sprintf("fontsize=%d", max(opts.FontSize, 12)),
		fmt.Sprintf("fontcolor=%s", fallback(opts.FontColor, "white")),
		fmt.Sprintf("bordercolor=%s", fallback(opts.OutlineColor, "black")),
		fmt.Sprintf("borderw=%d", outlineWidth),
		fmt.Sprintf("x=%s", fallback(opts.XExpr, "(w-text_w)/2")),
		fmt.Sprintf("y=%s", fallback(opts.YExpr, "h-text_h-150")),
	}

	if strings.TrimSpace(opts.FontFile) != "" {
		values = append(values, fmt.Sprintf("fontfile='%s'", escapeFFmpegPath(opts.FontFile)))
	}

	enable := fmt.Sprintf("between(t,%s,%s)", formatFloat(opts.Start), formatFloat(opts.End))
	values = append(values, fmt.Sprintf("enable='%s'", escapeFilterValue(enable)))

	return "drawtext=" + strings.Join(values, ":")
}

// wrapWidth estimates how many characters fit in 80% of the canvas width.
func wrapWidth(canvasWidth, fontSize int) int {
	if fontSize <= 0 {
		fontSize = 60
	}
	chars := int(float64(canvasWidth) * 0.8 / (float64(fontSize) * 0.5))
	if chars < 8 {
		chars = 8
	}
	return chars
}

func wrapText(text string, maxChars int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var (
		lines []string
		line  string
	)
	for _, w := range words {
		switch {
		case line == "":
			line = w
		case len(line)+1+len(w) <= maxChars:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func subtractMargin(base string, margin int) string {
	if margin <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, margin)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func escapeDrawText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")

	const newlinePlaceholder = "\u0000"
	value = strings.ReplaceAll(value, "\n", newlinePlaceholder)

	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, newlinePlaceholder, `\n`)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFFmpegPath(value string) string {
	value = filepath.Clean(value)
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValue(value string) string {
	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValueNoQuotes(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, ",", `\,`)
	value = strings.ReplaceAll(value, "%", `\%`)
	return value
}
