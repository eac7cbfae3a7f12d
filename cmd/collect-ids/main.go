// Command collect-ids resolves configured top-channel names to channel IDs and
// prints lines ready to paste into the environment file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yt-analytics/yt-analytics-go/internal/config"
	"github.com/yt-analytics/yt-analytics-go/internal/middleware"
	"github.com/yt-analytics/yt-analytics-go/internal/service"
	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

var (
	envFile   string
	countries []string
	names     string
)

var rootCmd = &cobra.Command{
	Use:   "collect-ids",
	Short: "Resolve top channel names to YouTube channel IDs",
	Long: `collect-ids searches YouTube for each configured channel name
(TOP_CHANNEL_NAMES_<CC>) and prints TOP_CHANNEL_IDS_<CC> lines for the
environment file. Names that cannot be matched are listed as comments.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to read configuration from")
	rootCmd.Flags().StringSliceVar(&countries, "country", nil, "country codes to resolve (default TOP_CHANNELS_COUNTRIES)")
	rootCmd.Flags().StringVar(&names, "names", "", "comma-separated channel names, overrides config (single country only)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadFile(envFile)
	middleware.InitLogger(cfg.LogLevel, "collect-ids")

	if cfg.YouTubeAPIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is not set")
	}

	targets := cfg.TopChannelsCountries
	if len(countries) > 0 {
		targets = nil
		for _, cc := range countries {
			targets = append(targets, strings.ToUpper(strings.TrimSpace(cc)))
		}
	}

	sources := make(map[string]config.TopChannelSource, len(targets))
	for _, cc := range targets {
		sources[cc] = cfg.TopChannels[cc]
	}
	if names != "" {
		if len(targets) != 1 {
			return fmt.Errorf("--names needs exactly one --country, got %d", len(targets))
		}
		var list []string
		for _, n := range strings.Split(names, ",") {
			if n = strings.TrimSpace(n); n != "" {
				list = append(list, n)
			}
		}
		sources[targets[0]] = config.TopChannelSource{Names: list}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	yt := youtube.NewClient(youtube.Options{
		BaseURL: cfg.YouTubeAPIBase,
		APIKey:  cfg.YouTubeAPIKey,
		Gate:    youtube.NewRateGate(cfg.YouTubeRateLimit, cfg.YouTubeRateBurst),
		Logger:  middleware.Logger,
	})
	svc := service.NewTopChannelsService(yt, nil, nil, targets, sources, middleware.Logger)

	return collect(ctx, cmd.OutOrStdout(), svc, targets, sources)
}

// nameResolver is the part of the top channels service the command needs.
type nameResolver interface {
	ResolveNames(ctx context.Context, names []string) []string
}

func collect(ctx context.Context, out io.Writer, r nameResolver, targets []string, sources map[string]config.TopChannelSource) error {
	found, missing := 0, 0
	for _, cc := range targets {
		list := sources[cc].Names
		if len(list) == 0 {
			fmt.Fprintf(out, "# %s: no channel names configured\n", cc)
			continue
		}

		ids := r.ResolveNames(ctx, list)
		if err := ctx.Err(); err != nil {
			return err
		}

		var resolved []string
		for i, id := range ids {
			if id == "" {
				fmt.Fprintf(out, "# NOT FOUND (%s): %s\n", cc, list[i])
				missing++
				continue
			}
			resolved = append(resolved, id)
			found++
		}
		fmt.Fprintf(out, "TOP_CHANNEL_IDS_%s=%s\n", cc, strings.Join(resolved, ","))
	}

	fmt.Fprintf(out, "# found: %d, not found: %d\n", found, missing)
	return nil
}
