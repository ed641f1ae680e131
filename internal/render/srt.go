package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"shorts/internal/compose"
)

// WriteSRT writes caption blocks as a SubRip document.
func WriteSRT(w io.Writer, blocks []compose.CaptionBlock) error {
	bw := bufio.NewWriter(w)
	n := 0
	for _, block := range blocks {
		text := strings.TrimSpace(block.Text)
		if text == "" || block.EndSec <= block.StartSec {
			continue
		}
		n++
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", n, srtTimestamp(block.StartSec), srtTimestamp(block.EndSec), text)
	}
	return bw.Flush()
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
