package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// StatusWriter animates a one-line status on w for work that has no
// per-clip table, such as building a plan.
type StatusWriter struct {
	w     io.Writer
	frame spinner.Spinner

	mu      sync.Mutex
	message string
	started time.Time
	stopped bool

	quit chan struct{}
	done chan struct{}
}

// NewStatusWriter starts redrawing the status line in the background.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:       w,
		frame:   spinner.MiniDot,
		started: time.Now(),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update replaces the message and restarts the elapsed timer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.started = time.Now()
	sw.mu.Unlock()
}

// Stop erases the status line.
func (sw *StatusWriter) Stop() {
	sw.finish("")
}

// Finish replaces the status line with a final summary.
func (sw *StatusWriter) Finish(summary string) {
	sw.finish(summary)
}

func (sw *StatusWriter) finish(summary string) {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	elapsed := time.Since(sw.started)
	sw.mu.Unlock()

	close(sw.quit)
	<-sw.done
	fmt.Fprint(sw.w, "\r\033[K")
	if summary != "" {
		fmt.Fprintf(sw.w, "%s %s (%s)\n", StatusStyle(StatusResolved).Render("✓"), summary, formatElapsed(elapsed))
	}
}

func (sw *StatusWriter) loop() {
	defer close(sw.done)
	ticker := time.NewTicker(sw.frame.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-sw.quit:
			return
		case <-ticker.C:
		}
		sw.mu.Lock()
		msg, started := sw.message, sw.started
		sw.mu.Unlock()
		glyph := sw.frame.Frames[i%len(sw.frame.Frames)]
		fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", glyph, msg, formatElapsed(time.Since(started)))
	}
}

// formatElapsed renders d compactly: 250ms, 2.5s, 42s, 2m05s.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
