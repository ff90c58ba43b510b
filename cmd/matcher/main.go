// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	matcher "github.com/Soo0803/ternswipe-matcher"
	"github.com/Soo0803/ternswipe-matcher/ai"
	"github.com/Soo0803/ternswipe-matcher/assignment"
	"github.com/Soo0803/ternswipe-matcher/config"
	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/metrics"
	"github.com/urfave/cli/v2"
)

// newProvider overrides the configured embedding provider when set.
var newProvider func() ai.AIProvider

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "matcher",
		Usage: "Rank and assign students to research projects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (defaults to $" + config.EnvConfigFile + ")",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides db_path)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Store seekers and offers from a YAML or JSON dataset",
				ArgsUsage: "<dataset>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "index",
						Usage: "Embed the imported records right away",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed every seeker and offer whose text changed",
				Action: indexCommand,
			},
			{
				Name:   "rank",
				Usage:  "Rank offers for a seeker, or seekers for an offer",
				Action: rankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "seeker",
						Usage: "Seeker ID to rank offers for",
					},
					&cli.StringFlag{
						Name:  "offer",
						Usage: "Offer ID to rank seekers for",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (0 uses result_limit)",
					},
				},
			},
			{
				Name:   "explain",
				Usage:  "Explain a seeker's top offers",
				Action: explainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "seeker",
						Usage:    "Seeker ID to explain offers for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of offers to explain",
						Value: 3,
					},
				},
			},
			{
				Name:      "assign",
				Usage:     "Greedily assign seekers to open offers in the given order",
				ArgsUsage: "[seeker IDs...]",
				Action:    assignCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "Ranked offers tried per seeker (0 uses per_seeker_top_n)",
					},
				},
			},
		},
	}
}

// withEngine opens an engine from configuration, runs fn and writes the
// metrics textfile if one is configured.
func withEngine(c *cli.Context, fn func(ctx context.Context, e *matcher.Engine, w io.Writer) error) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts, err := matcher.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	m := metrics.NewManager()
	opts = append(opts, matcher.WithMetrics(m), matcher.WithLogger(slog.Default()))
	if newProvider != nil {
		opts = append(opts, matcher.WithAIProvider(newProvider()))
	}

	e, err := matcher.NewEngine(cfg.DBPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer e.Close()

	runErr := fn(ctx, e, c.App.Writer)
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("failed to write metrics", "path", cfg.MetricsFile, "err", err)
		}
	}
	return runErr
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	ctx := context.Background()

	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(ctx, path)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	if !c.IsSet("log-level") {
		if err := configureLogger(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func importCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("dataset path is required")
	}
	ds, err := loadDataset(path)
	if err != nil {
		return err
	}

	return withEngine(c, func(ctx context.Context, e *matcher.Engine, w io.Writer) error {
		if err := e.PutSeekers(ctx, ds.Seekers...); err != nil {
			return fmt.Errorf("failed to store seekers: %w", err)
		}
		if err := e.PutOffers(ctx, ds.Offers...); err != nil {
			return fmt.Errorf("failed to store offers: %w", err)
		}
		fmt.Fprintf(w, "Imported %d seekers and %d offers\n", len(ds.Seekers), len(ds.Offers))

		if !c.Bool("index") {
			return nil
		}
		return runIndex(ctx, e, w)
	})
}

func indexCommand(c *cli.Context) error {
	return withEngine(c, runIndex)
}

func runIndex(ctx context.Context, e *matcher.Engine, w io.Writer) error {
	stats, err := e.IndexAll(ctx)
	fmt.Fprintf(w, "Embedded %d, skipped %d, failed %d\n", stats.Embedded, stats.Skipped, stats.Failed)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

func rankCommand(c *cli.Context) error {
	seekerID, offerID := c.String("seeker"), c.String("offer")
	if (seekerID == "") == (offerID == "") {
		return fmt.Errorf("exactly one of --seeker or --offer is required")
	}

	return withEngine(c, func(ctx context.Context, e *matcher.Engine, w io.Writer) error {
		var (
			candidates []core.Candidate
			outcome    core.Outcome
			err        error
		)
		if seekerID != "" {
			candidates, outcome, err = e.RankOffers(ctx, core.ID(seekerID), c.Int("limit"))
		} else {
			candidates, outcome, err = e.RankSeekers(ctx, core.ID(offerID), c.Int("limit"))
		}
		if err != nil {
			return fmt.Errorf("ranking failed: %w", err)
		}
		if outcome != core.OutcomeOK {
			fmt.Fprintf(w, "No results: %s\n", outcome)
			return nil
		}
		printCandidates(w, candidates, seekerID != "")
		return nil
	})
}

func printCandidates(w io.Writer, candidates []core.Candidate, offers bool) {
	fmt.Fprintln(w, "rank\tid\tscore\tsimilarity\tcoverage\tavailability\tp_accept\tperf")
	for i, c := range candidates {
		c = c.Rounded()
		id := c.OfferID
		if !offers {
			id = c.SeekerID
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			i+1, id, c.Score, c.Similarity, c.Coverage, c.Availability, c.PAccept, c.Perf)
	}
}

func explainCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *matcher.Engine, w io.Writer) error {
		explanations, outcome, err := e.ExplainOffers(ctx, core.ID(c.String("seeker")), c.Int("top"))
		if err != nil {
			return fmt.Errorf("explain failed: %w", err)
		}
		if outcome != core.OutcomeOK {
			fmt.Fprintf(w, "No results: %s\n", outcome)
			return nil
		}
		for i, ex := range explanations {
			fmt.Fprintf(w, "%d. %s (%.4f): %s\n", i+1, ex.OfferID, ex.Rounded().Score, strings.Join(ex.Reasons, "; "))
		}
		return nil
	})
}

func assignCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *matcher.Engine, w io.Writer) error {
		ids := make([]core.ID, 0, c.NArg())
		for _, arg := range c.Args().Slice() {
			ids = append(ids, core.ID(arg))
		}
		if len(ids) == 0 {
			seekers, err := e.Seekers().ListSeekers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list seekers: %w", err)
			}
			for _, s := range seekers {
				ids = append(ids, s.ID)
			}
		}

		var opts []assignment.Option
		if n := c.Int("top-n"); n > 0 {
			opts = append(opts, assignment.WithPerSeekerTopN(n))
		}
		result, err := e.Assign(ctx, ids, opts...)
		if err != nil {
			return fmt.Errorf("assignment failed: %w", err)
		}

		for _, a := range result.Assignments {
			switch {
			case a.Err != nil:
				fmt.Fprintf(w, "%s\t-\terror: %v\n", a.SeekerID, a.Err)
			case a.Assigned():
				fmt.Fprintf(w, "%s\t%s\t%.4f\n", a.SeekerID, a.OfferID, a.Score)
			default:
				fmt.Fprintf(w, "%s\t-\tunassigned (%s)\n", a.SeekerID, a.Outcome)
			}
		}

		offers := make([]core.ID, 0, len(result.Remaining))
		for id := range result.Remaining {
			offers = append(offers, id)
		}
		slices.Sort(offers)
		for _, id := range offers {
			fmt.Fprintf(w, "remaining\t%s\t%d\n", id, result.Remaining[id])
		}
		fmt.Fprintf(w, "Run %s: assigned %d of %d seekers\n", result.RunID, result.Assigned(), len(ids))
		return nil
	})
}

func setupLogger(c *cli.Context) error {
	return configureLogger(c.String("log-level"))
}

func configureLogger(levelStr string) error {
	// Map string to slog.Level
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
