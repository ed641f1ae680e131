package tui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusWriterRendersMessage(t *testing.T) {
	var out lockedBuffer
	sw := NewStatusWriter(&out)
	sw.Update("probing narration")
	time.Sleep(250 * time.Millisecond)
	sw.Finish("plan built")
	sw.Stop()

	got := out.String()
	if !strings.Contains(got, "probing narration") {
		t.Fatalf("status output %q missing message", got)
	}
	if !strings.HasSuffix(got, ")\n") || !strings.Contains(got, "plan built") {
		t.Fatalf("status output %q missing summary line", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{2500 * time.Millisecond, "2.5s"},
		{42 * time.Second, "42s"},
		{125 * time.Second, "2m05s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Errorf("json flag: got %v, want ModeJSON", got)
	}
	if got := DetectMode(&buf, true, false); got != ModePlain {
		t.Errorf("no-progress flag: got %v, want ModePlain", got)
	}
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Errorf("non-file writer: got %v, want ModePlain", got)
	}
}
