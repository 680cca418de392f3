// Package cli implements the surfcast command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"surfcast/internal/cache"
	"surfcast/internal/config"
	"surfcast/internal/msw"
	"surfcast/internal/spots"
	"surfcast/internal/ui"
)

var (
	unitsFlag  string
	formatFlag string
	noCache    bool
)

var rootCmd = &cobra.Command{
	Use:   "surfcast <spot>",
	Short: "Surf forecasts for your terminal",
	Long: `Look up a surf forecast by spot name, alias, or provider id.

Matching is forgiving: "folly", "Folly-Beach", and "450" all find the
same spot. An ambiguous query opens a picker when run interactively.`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runForecast,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&unitsFlag, "units", "u", "", "unit system: us, uk, or eu")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "terminal", "output format: terminal or html")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "skip the on-disk forecast cache")

	rootCmd.AddCommand(spotsCmd)
}

// app bundles the dependencies a command execution needs.
type app struct {
	cfg   *config.Config
	index *spots.Index
	cache *cache.Cache
	out   io.Writer
}

// buildApp loads configuration, the spot snapshot, and the forecast cache.
// The returned cleanup closes the cache store and must always be called.
func buildApp() (*app, func(), error) {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	index, err := spots.LoadSnapshot(cfg.Spots.SnapshotPath)
	if err != nil {
		return nil, nil, err
	}

	client := msw.NewClient(cfg.MSW.APIKey)
	opts := []cache.Option{cache.WithTTL(cfg.Cache.TTL)}
	cleanup := func() {}
	if !noCache && cfg.Cache.DBPath != "" {
		store, err := cache.OpenSQLiteStore(cfg.Cache.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: forecast cache unavailable: %v\n", err)
		} else {
			opts = append(opts, cache.WithStore(store))
			cleanup = func() { store.Close() }
		}
	}

	return &app{
		cfg:   cfg,
		index: index,
		cache: cache.New(client, opts...),
		out:   os.Stdout,
	}, cleanup, nil
}

func (a *app) units() (msw.UnitSystem, error) {
	if unitsFlag != "" {
		return msw.ParseUnitSystem(unitsFlag)
	}
	return msw.ParseUnitSystem(a.cfg.MSW.DefaultUnits)
}

func (a *app) format() (ui.Format, error) {
	switch formatFlag {
	case "terminal":
		return ui.FormatTerminal, nil
	case "html":
		return ui.FormatHTML, nil
	default:
		return "", fmt.Errorf("invalid format %q (want terminal or html)", formatFlag)
	}
}

func runForecast(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	units, err := a.units()
	if err != nil {
		return err
	}
	format, err := a.format()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	candidates, err := spots.NewResolver(a.index).Resolve(query)
	if err != nil {
		if errors.Is(err, spots.ErrNotFound) {
			return fmt.Errorf("no spot matches %q; try `surfcast spots`", query)
		}
		return err
	}

	spot := candidates[0]
	if len(candidates) > 1 {
		if !isInteractive() {
			fmt.Fprint(a.out, ui.For(format).Render(ui.AmbiguousView(query, candidates)))
			return fmt.Errorf("%q is ambiguous", query)
		}
		spot, err = pickSpot(query, candidates)
		if err != nil {
			return err
		}
		if spot == nil {
			return nil
		}
	}

	fc, err := a.cache.GetOrFetch(cmd.Context(), spot.ID, units)
	if err != nil {
		return fmt.Errorf("fetching forecast for %s: %w", spot.Name, err)
	}

	fmt.Fprint(a.out, ui.For(format).Render(ui.ForecastPage(spot.Name, fc)))
	return nil
}

// isInteractive reports whether stdout is a character device, i.e. the user
// is looking at a live terminal rather than a pipe.
func isInteractive() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
