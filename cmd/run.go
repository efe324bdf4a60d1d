package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edhtail/internal/filter"
	"github.com/sells-group/edhtail/internal/model"
	"github.com/sells-group/edhtail/internal/pipeline"
	"github.com/sells-group/edhtail/internal/report"
	"github.com/sells-group/edhtail/internal/store"
	"github.com/sells-group/edhtail/pkg/edhrec"
	"github.com/sells-group/edhtail/pkg/scryfall"
)

var (
	runBottomK     int
	runConcurrency int
	runDelay       float64
	runCSV         string
	runNoStore     bool

	runOnlyPositive  bool
	runIncludeErrors bool

	runIncludePartners          bool
	runIncludeBackgrounds       bool
	runIncludeCompanions        bool
	runIncludeDoctorsCompanions bool
	runIncludeFunnySets         bool
	runIncludeVanilla           bool
	runIncludePTK               bool
	runPTKStrict                bool
	runIncludeDoctors           bool
	runIncludeRecent            bool
	runRecentDays               int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, filter, and rank the commander pool",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if runBottomK <= 0 {
			return eris.Errorf("run: --bottom-k must be positive, got %d", runBottomK)
		}
		if runDelay < 0 {
			return eris.Errorf("run: --delay must be >= 0, got %v", runDelay)
		}

		httpClient := &http.Client{Timeout: cfg.HTTP.Timeout()}
		sfClient := scryfall.NewClient(cfg.HTTP.UserAgent,
			scryfall.WithBaseURL(cfg.Scryfall.BaseURL),
			scryfall.WithHTTPClient(httpClient),
			scryfall.WithPageRate(cfg.Scryfall.PageRPS),
		)
		edClient := edhrec.NewClient(cfg.HTTP.UserAgent, edhrec.WithHTTPClient(httpClient))

		rules := filter.Rules{
			ExcludeFunny:            !runIncludeFunnySets,
			ExcludePartner:          !runIncludePartners,
			ExcludeBackground:       !runIncludeBackgrounds,
			ExcludeCompanion:        !runIncludeCompanions,
			ExcludeDoctorsCompanion: !runIncludeDoctorsCompanions,
			ExcludeVanilla:          !runIncludeVanilla,
			ExcludeRecent:           !runIncludeRecent,
			RecentDays:              runRecentDays,
			ExcludePTK:              !runIncludePTK,
			PTKStrict:               runPTKStrict,
			ExcludeDoctors:          !runIncludeDoctors,
			StrictConcurrency:       runConcurrency / 2,
		}

		params := pipeline.Params{
			BottomK:       runBottomK,
			Concurrency:   runConcurrency,
			Delay:         time.Duration(runDelay * float64(time.Second)),
			OnlyPositive:  runOnlyPositive,
			IncludeErrors: runIncludeErrors,
			Rules:         rules,
		}

		p := pipeline.New(cfg, sfClient, edClient)
		outcome, runErr := p.Run(ctx, params)

		if !runNoStore {
			recordRun(ctx, params, outcome, runErr)
		}
		if runErr != nil {
			return eris.Wrap(runErr, "run")
		}

		opts := report.Options{BottomK: runBottomK, IncludeErrors: runIncludeErrors}
		if runCSV != "" {
			if err := report.CSV(runCSV, outcome.Results, opts); err != nil {
				return err
			}
			cmd.Printf("Saved CSV to %s\n", runCSV)
			return nil
		}
		report.Console(os.Stdout, outcome.Results, opts)
		return nil
	},
}

// recordRun appends the run to the history store. Store trouble is logged,
// never fatal: the report already went to the user.
func recordRun(ctx context.Context, params pipeline.Params, outcome *pipeline.Outcome, runErr error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run: open store failed", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run: migrate store failed", zap.Error(err))
		return
	}

	run := model.Run{
		ID:     uuid.New().String(),
		Status: model.RunStatusComplete,
		Params: model.RunParams{
			Query:         cfg.Scryfall.Query,
			BottomK:       params.BottomK,
			Concurrency:   params.Concurrency,
			DelaySecs:     params.Delay.Seconds(),
			OnlyPositive:  params.OnlyPositive,
			IncludeErrors: params.IncludeErrors,
			PTKStrict:     params.Rules.PTKStrict,
			RecentDays:    params.Rules.RecentDays,
		},
		CreatedAt: time.Now().UTC(),
	}
	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Stats = outcome.Stats
		run.Results = outcome.Results
	}

	if err := st.RecordRun(ctx, run); err != nil {
		zap.L().Warn("run: record run failed", zap.Error(err))
	}
}

func init() {
	runCmd.Flags().IntVar(&runBottomK, "bottom-k", 20, "how many least-popular commanders to keep")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 8, "concurrent EDHREC requests")
	runCmd.Flags().Float64Var(&runDelay, "delay", 0.15, "per-request pacing delay in seconds")
	runCmd.Flags().StringVar(&runCSV, "csv", "", "write results to CSV at this path instead of stdout")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "skip recording the run in the history store")
	runCmd.Flags().BoolVar(&runOnlyPositive, "only-positive", false, "exclude commanders with 0 decks")
	runCmd.Flags().BoolVar(&runIncludeErrors, "include-errors", false, "show entries that failed to fetch (as '?' decks)")
	runCmd.Flags().BoolVar(&runIncludePartners, "include-partners", false, "include Partner / Partner With / Friends Forever commanders")
	runCmd.Flags().BoolVar(&runIncludeBackgrounds, "include-backgrounds", false, "include commanders with 'Choose a Background'")
	runCmd.Flags().BoolVar(&runIncludeCompanions, "include-companions", false, "include commanders with the Companion ability")
	runCmd.Flags().BoolVar(&runIncludeDoctorsCompanions, "include-doctors-companions", false, "include commanders with the Doctor's companion mechanic")
	runCmd.Flags().BoolVar(&runIncludeFunnySets, "include-funny-sets", false, "include silver-border and playtest sets")
	runCmd.Flags().BoolVar(&runIncludeVanilla, "include-vanilla", false, "include commanders with no rules text")
	runCmd.Flags().BoolVar(&runIncludePTK, "include-ptk", false, "include Portal Three Kingdoms commanders")
	runCmd.Flags().BoolVar(&runPTKStrict, "ptk-strict", false, "detect PTK by scanning all printings (slower, exact)")
	runCmd.Flags().BoolVar(&runIncludeDoctors, "include-doctors", false, "include the Doctors (Time Lords) from Doctor Who sets")
	runCmd.Flags().BoolVar(&runIncludeRecent, "include-recent", false, "include commanders printed in the last --recent-days")
	runCmd.Flags().IntVar(&runRecentDays, "recent-days", 90, "day window for the recency exclusion (0 disables it)")
	rootCmd.AddCommand(runCmd)
}
