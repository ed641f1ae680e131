package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shorts/internal/logx"
	"shorts/internal/metrics"
	"shorts/internal/server"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merge, timings, and clip cache endpoints over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := loadWorkspace(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer ws.Close()

	cache, err := ws.openCache()
	if err != nil {
		return err
	}
	defer closeCache(cache)

	m := metrics.New()
	renderOnMerge := ws.cfg.Server.RenderOnMergeValue()
	p, err := ws.newPipeline(cache, m, true)
	if err != nil {
		if renderOnMerge {
			return err
		}
		ws.logger.Warn("encoder unavailable; serving plans only", slog.String("error", err.Error()))
		if p, err = ws.newPipeline(cache, m, false); err != nil {
			return err
		}
	}

	addr := ws.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	log := logx.WithComponent(ws.logger, "server")
	srv := server.New(p, cache, m, log, server.Options{RenderOnMerge: renderOnMerge})
	log.Info("listening",
		slog.String("addr", addr),
		slog.String("workspace", ws.paths.Root),
		slog.String("cache", ws.cfg.Cache.Backend),
		slog.Bool("render_on_merge", renderOnMerge))
	return server.ListenAndServe(ctx, addr, srv.Router(), log)
}
