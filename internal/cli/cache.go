package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shorts/internal/clipcache"
)

var (
	cachePutClips  []string
	cachePutAppend bool
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or seed the keyword clip cache",
	}

	cmd.AddCommand(newCacheGetCmd())
	cmd.AddCommand(newCachePutCmd())
	return cmd
}

func newCacheGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <keyword>",
		Short: "List the clips cached under a keyword",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheGet,
	}
}

func newCachePutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <keyword>",
		Short: "Store downloaded clips under a keyword",
		Args:  cobra.ExactArgs(1),
		RunE:  runCachePut,
	}

	cmd.Flags().StringArrayVar(&cachePutClips, "clip", nil, "Clip as link=path (repeat flag for multiple)")
	cmd.Flags().BoolVar(&cachePutAppend, "append", false, "Merge with existing clips instead of replacing them")
	_ = cmd.MarkFlagRequired("clip")

	return cmd
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

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

	clips, ok, err := cache.Get(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, struct {
			Keyword string           `json:"keyword"`
			Found   bool             `json:"found"`
			Clips   []clipcache.Clip `json:"clips"`
		}{Keyword: args[0], Found: ok, Clips: clips})
	}
	if !ok {
		fmt.Fprintf(out, "no clips cached for %q\n", args[0])
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "LINK\tPATH")
	for _, clip := range clips {
		fmt.Fprintf(tw, "%s\t%s\n", clip.Link, clip.Path)
	}
	return tw.Flush()
}

func runCachePut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	clips, err := parseClipFlags(cachePutClips)
	if err != nil {
		return err
	}

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

	if cachePutAppend {
		existing, _, err := cache.Get(ctx, args[0])
		if err != nil {
			return err
		}
		clips = mergeClips(existing, clips)
	}

	if err := cache.Put(ctx, args[0], clips); err != nil {
		return err
	}
	if strings.EqualFold(ws.cfg.Cache.Backend, "memory") {
		ws.logger.Warn("memory clip cache does not outlive this command; configure cache.backend: redis")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cached %d clip(s) under %q\n", len(clips), args[0])
	return nil
}

// parseClipFlags parses link=path pairs. Links may contain '=', so the last
// separator splits the pair.
func parseClipFlags(values []string) ([]clipcache.Clip, error) {
	clips := make([]clipcache.Clip, 0, len(values))
	for _, value := range values {
		idx := strings.LastIndex(value, "=")
		if idx <= 0 || idx == len(value)-1 {
			return nil, fmt.Errorf("invalid --clip %q: expected link=path", value)
		}
		clips = append(clips, clipcache.Clip{
			Link: strings.TrimSpace(value[:idx]),
			Path: strings.TrimSpace(value[idx+1:]),
		})
	}
	return clips, nil
}

// mergeClips overlays updates onto existing, replacing entries with the same
// link and keeping the existing order.
func mergeClips(existing, updates []clipcache.Clip) []clipcache.Clip {
	merged := append([]clipcache.Clip(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, clip := range merged {
		index[clip.Link] = i
	}
	for _, clip := range updates {
		if i, ok := index[clip.Link]; ok {
			merged[i] = clip
			continue
		}
		index[clip.Link] = len(merged)
		merged = append(merged, clip)
	}
	return merged
}
