package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shorts/internal/compose"
	"shorts/internal/config"
)

func testPlan(id string) compose.RenderPlan {
	timeline := compose.BuildTimeline([]compose.ClipPlacement{
		{SourceRef: "/clips/a.mp4", TrimStart: 0, TrimEnd: 3},
	})
	audio, _ := compose.Align(timeline.Duration(), nil)
	return compose.Emit(id, compose.LayoutShorts, timeline, audio, nil, nil)
}

func TestPlanHashIgnoresID(t *testing.T) {
	a := PlanHash(testPlan("one"))
	b := PlanHash(testPlan("two"))
	if a != b {
		t.Fatalf("hash depends on plan ID: %s vs %s", a, b)
	}

	changed := testPlan("one")
	changed.Timeline.Segments[0].TrimEnd = 4
	if PlanHash(changed) == a {
		t.Fatalf("hash did not change with trim")
	}
}

func TestConfigHashTracksEncodingSettings(t *testing.T) {
	cfg := config.Default()
	base := ConfigHash(cfg)
	if base != ConfigHash(config.Default()) {
		t.Fatalf("config hash is not deterministic")
	}

	cfg.Server.Addr = ":9999"
	if ConfigHash(cfg) != base {
		t.Fatalf("server settings should not affect the hash")
	}

	cfg.Captions.FontSize = 72
	if ConfigHash(cfg) == base {
		t.Fatalf("caption style should affect the hash")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "final_a.mp4")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "final_b.mp4")

	rs := &RenderState{Outputs: map[string]OutputState{
		existing: {PlanHash: "p", ConfigHash: "c"},
		missing:  {PlanHash: "p", ConfigHash: "c"},
	}}

	cases := []struct {
		name   string
		output string
		plan   string
		cfg    string
		force  bool
		want   string
	}{
		{"forced", existing, "p", "c", true, ReasonForced},
		{"new", filepath.Join(dir, "other.mp4"), "p", "c", false, ReasonNew},
		{"config", existing, "p", "c2", false, ReasonConfigChanged},
		{"plan", existing, "p2", "c", false, ReasonPlanChanged},
		{"missing", missing, "p", "c", false, ReasonOutputMissing},
		{"up to date", existing, "p", "c", false, ReasonUpToDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(rs, tc.output, tc.plan, tc.cfg, tc.force)
			if got.Reason != tc.want {
				t.Fatalf("reason = %q, want %q", got.Reason, tc.want)
			}
			if got.Skip() != (tc.want == ReasonUpToDate) {
				t.Fatalf("skip = %v for reason %q", got.Skip(), got.Reason)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta", "render_state.json")

	rs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Outputs) != 0 {
		t.Fatalf("expected empty state for missing file")
	}

	rs.Record("/out/final_x.mp4", OutputState{
		PlanID:     "x",
		PlanHash:   "sha256:p",
		ConfigHash: "sha256:c",
		RenderedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DurationS:  12.5,
		Segments:   3,
	})
	if err := rs.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got := loaded.Outputs["/out/final_x.mp4"]
	if got.PlanHash != "sha256:p" || got.Segments != 3 || got.DurationS != 12.5 {
		t.Fatalf("unexpected loaded state %+v", got)
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := Load(path)
	if err != nil || rs == nil || rs.Outputs == nil {
		t.Fatalf("expected empty state, got %+v err=%v", rs, err)
	}
}

func TestPruneMissing(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.mp4")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs := &RenderState{Outputs: map[string]OutputState{
		keep:                           {},
		filepath.Join(dir, "gone.mp4"): {},
	}}
	if removed := rs.PruneMissing(); removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if _, ok := rs.Outputs[keep]; !ok {
		t.Fatalf("existing output was pruned")
	}
}
