package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shorts/internal/clipcache"
	"shorts/internal/config"
	"shorts/internal/paths"
	"shorts/internal/tools"
)

const doctorPingTimeout = 3 * time.Second

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, configuration, and the clip cache",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(workspaceDir)
	if err != nil {
		return err
	}

	var checks []healthCheck
	checks = append(checks, checkTools(tools.Probe(ctx)))

	if err := config.LoadDotEnv(pp.EnvFile); err != nil {
		checks = append(checks, healthCheck{Name: "Env", Status: "error", Summary: err.Error()})
	}
	cfg, cfgErr := config.Load(pp.ConfigFile)
	if cfgErr == nil {
		cfg.ApplyEnv()
	}
	checks = append(checks, checkConfig(cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}

	pp = paths.ApplyConfig(pp, cfg)
	checks = append(checks, checkOutputs(pp))
	checks = append(checks, checkCache(ctx, cfg.Cache))

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkTools(infos map[string]tools.ToolInfo) healthCheck {
	var found, missing []string
	for _, name := range []string{tools.FFmpeg, tools.FFprobe} {
		info, ok := infos[name]
		if !ok || !info.Available {
			missing = append(missing, name)
			continue
		}
		label := name
		if info.Version != "" {
			label += " " + info.Version
		}
		found = append(found, label)
	}
	if len(missing) > 0 {
		return healthCheck{Name: "Tools", Status: "error", Summary: "missing " + joinComma(missing)}
	}
	return healthCheck{Name: "Tools", Status: "ok", Summary: joinComma(found)}
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: err.Error()}
	}
	summary := fmt.Sprintf("%s %dfps crf %d, captions %dpx", cfg.Video.Codec, cfg.Video.FPS, cfg.Video.CRF, cfg.Captions.FontSize)
	if strings.TrimSpace(cfg.Captions.FontFile) == "" {
		return healthCheck{Name: "Config", Status: "warning", Summary: summary + "; no caption font file, ffmpeg default font is used"}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkOutputs(pp paths.WorkspacePaths) healthCheck {
	if err := pp.EnsureMetaDirs(); err != nil {
		return healthCheck{Name: "Outputs", Status: "error", Summary: err.Error()}
	}
	return healthCheck{Name: "Outputs", Status: "ok", Summary: pp.OutputDir}
}

func checkCache(ctx context.Context, cc config.CacheConfig) healthCheck {
	if !strings.EqualFold(cc.Backend, "redis") {
		return healthCheck{Name: "Cache", Status: "warning", Summary: "memory backend; cached clips are lost on exit"}
	}
	rc, err := clipcache.NewRedis(clipcache.Options{
		Backend:   cc.Backend,
		RedisAddr: cc.RedisAddr,
		RedisDB:   cc.RedisDB,
		KeyPrefix: cc.KeyPrefix,
	})
	if err != nil {
		return healthCheck{Name: "Cache", Status: "error", Summary: err.Error()}
	}
	defer rc.Close()

	ctx, cancel := context.WithTimeout(ctx, doctorPingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		return healthCheck{Name: "Cache", Status: "error", Summary: fmt.Sprintf("redis %s: %v", cc.RedisAddr, err)}
	}
	return healthCheck{Name: "Cache", Status: "ok", Summary: "redis " + cc.RedisAddr}
}

func writeDoctorResult(cmd *cobra.Command, root string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("WORKSPACE HEALTH:")+" "+root)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-10s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
