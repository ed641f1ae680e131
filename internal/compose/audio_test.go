package compose

import (
	"errors"
	"testing"
)

func TestAlignNoNarration(t *testing.T) {
	d, err := Align(12, nil)
	if err != nil {
		t.Fatalf("Align error: %v", err)
	}
	if d.Mode != AudioNone || d.OutputDuration != 12 || d.Loops != 1 || d.Narration != nil {
		t.Fatalf("unexpected directive: %+v", d)
	}
}

func TestAlignReplaceKeepsVideoDuration(t *testing.T) {
	for _, narration := range []float64{0, 3.5, 12} {
		d, err := Align(12, &NarrationTrack{AudioRef: "n.mp3", Duration: narration})
		if err != nil {
			t.Fatalf("Align error: %v", err)
		}
		if d.Mode != AudioReplace {
			t.Fatalf("narration %v: mode = %q, want replace", narration, d.Mode)
		}
		if d.OutputDuration != 12 || d.Loops != 1 {
			t.Fatalf("narration %v: output changed: %+v", narration, d)
		}
	}
}

func TestAlignLoopsToCoverNarration(t *testing.T) {
	d, err := Align(10, &NarrationTrack{AudioRef: "n.mp3", Duration: 25})
	if err != nil {
		t.Fatalf("Align error: %v", err)
	}
	if d.Mode != AudioLoopToFill {
		t.Fatalf("mode = %q, want loop_to_fill", d.Mode)
	}
	if d.Loops != 3 || d.OutputDuration != 30 {
		t.Fatalf("loops/output = %d/%v, want 3/30", d.Loops, d.OutputDuration)
	}
	if d.Narration == nil || d.Narration.Duration != 25 {
		t.Fatalf("narration not attached: %+v", d.Narration)
	}
}

func TestAlignSmallestCoveringMultiple(t *testing.T) {
	cases := []struct {
		video, narration float64
		loops            int
	}{
		{10, 20, 2},
		{10, 20.001, 3},
		{0.1, 0.3, 3},
		{0.2, 0.6, 3},
		{3, 100, 34},
		{7.5, 7.6, 2},
	}
	for _, tc := range cases {
		d, err := Align(tc.video, &NarrationTrack{Duration: tc.narration})
		if err != nil {
			t.Fatalf("Align(%v, %v) error: %v", tc.video, tc.narration, err)
		}
		if d.Loops != tc.loops {
			t.Errorf("Align(%v, %v) loops = %d, want %d", tc.video, tc.narration, d.Loops, tc.loops)
		}
		if d.OutputDuration < tc.narration {
			t.Errorf("Align(%v, %v) output %v shorter than narration", tc.video, tc.narration, d.OutputDuration)
		}
	}
}

func TestAlignRejectsInvalidInputs(t *testing.T) {
	if _, err := Align(0, &NarrationTrack{Duration: 3}); !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
	if _, err := Align(5, &NarrationTrack{Duration: -1}); !errors.Is(err, ErrInvalidNarration) {
		t.Fatalf("expected ErrInvalidNarration, got %v", err)
	}
}

func TestAlignCapsLoopCount(t *testing.T) {
	d, err := Align(1, &NarrationTrack{Duration: MaxLoops})
	if err != nil {
		t.Fatalf("Align at the loop cap: %v", err)
	}
	if d.Loops != MaxLoops {
		t.Fatalf("loops = %d, want %d", d.Loops, MaxLoops)
	}

	cases := []struct {
		video, narration float64
	}{
		{1, MaxLoops + 0.5},
		{0.001, 100000},
		{1e-12, 1e9},
		{5e-324, 1e308},
	}
	for _, tc := range cases {
		_, err := Align(tc.video, &NarrationTrack{Duration: tc.narration})
		if !errors.Is(err, ErrInvalidNarration) {
			t.Errorf("Align(%v, %v) = %v, want ErrInvalidNarration", tc.video, tc.narration, err)
			continue
		}
		if Kind(err) != KindInvalidJob {
			t.Errorf("Align(%v, %v) kind = %q, want %q", tc.video, tc.narration, Kind(err), KindInvalidJob)
		}
	}
}
