package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/ai"
	"github.com/kgill/job-radar/internal/ai/gemini"
	"github.com/kgill/job-radar/internal/config"
	"github.com/kgill/job-radar/internal/filtering"
	"github.com/kgill/job-radar/internal/jobboard"
	"github.com/kgill/job-radar/internal/jobboard/adzuna"
	"github.com/kgill/job-radar/internal/logger"
	"github.com/kgill/job-radar/internal/resume"
	"github.com/kgill/job-radar/internal/secrets"
	"github.com/kgill/job-radar/internal/store"
	"github.com/kgill/job-radar/internal/utils"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptReportByCompany = "Report by company"
	PromptListingsToFile  = "Dump listings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Append matched listings to the CSV?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptListingsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the job-radar pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before writing matched listings")
	runCmd.Flags().Bool("dry-run", false, "report matched listings without writing the CSV")
	runCmd.Flags().StringP("csv", "o", "", "output CSV file. Overrides the output-csv config key.")
	runCmd.Flags().Duration("every", 0, "re-run the pipeline on this interval (for example 24h). Default is a single run.")

	viper.BindPFlag("output-csv", runCmd.Flags().Lookup("csv"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting job-radar", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg.Redacted(), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumeText, err := resume.Load(cfg.ResumeFile)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	boards, err := prepareBoards(cfg, logger)
	if err != nil {
		logger.Fatal("preparing job boards", zap.Error(err))
	}

	st := store.New(cfg.OutputCSV, logger)

	matcher, err := prepareMatcher(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal(
			"building ai matcher",
			zap.Error(err),
			zap.String("hint", "set GOOGLE_API_KEY or the ai.gemini.api-key-file config key"),
		)
	}

	every, _ := cmd.Flags().GetDuration("every")

	for {
		if err := runOnce(ctx, cmd, cfg, boards, st, matcher, resumeText, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("pipeline failed", zap.Error(err))
		}

		if every <= 0 {
			return
		}

		logger.Info("waiting until next run", zap.Duration("every", every))
		if err := utils.WaitFor(ctx, every); err != nil {
			logger.Fatal("waiting interrupted", zap.Error(err))
		}
	}
}

func runOnce(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	boards *jobboard.Manager,
	st *store.CSV,
	matcher ai.Matcher,
	resumeText string,
	logger *zap.Logger,
) error {
	logger.Info("starting the search", zap.String("query", cfg.Search.Query))

	listings, err := boards.FetchAll(ctx, &jobboard.SearchParams{
		Query:          cfg.Search.Query,
		Location:       cfg.Search.Location,
		MaxResults:     cfg.Search.MaxResults,
		ResultsPerPage: cfg.Search.ResultsPerPage,
	})
	if err != nil {
		return fmt.Errorf("fetching listings: %w", err)
	}

	if listings.Len() == 0 {
		logger.Info("nothing to do", zap.String("reason", "no listings found"))
		return nil
	}

	filters := prepareFilters(cfg, st, matcher, resumeText, logger)

	filtered, err := filters.Run(ctx, listings)
	if err != nil {
		return fmt.Errorf("filtering: %w", err)
	}

	if filtered.Len() == 0 {
		logger.Info("nothing to do", zap.String("reason", "no listings left after filters"))
		return nil
	}

	logger.Info("matched listings", zap.Int("count", filtered.Len()))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return reportByCompany(filtered, logger)
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return persist(st, filtered, logger)
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}

		switch action {
		case PromptYes:
			return persist(st, filtered, logger)
		case PromptNo:
			logger.Info("skipping write", zap.String("reason", "got no from prompt"))
			return errExit
		case PromptReportByCompany:
			if err := reportByCompany(filtered, logger); err != nil {
				return err
			}
		case PromptListingsToFile:
			filename, err := filtered.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump listings to file: %w", err)
			}
			logger.Info("dumping listings to file", zap.String("filename", filename))
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func persist(st *store.CSV, listings *jobboard.Listings, logger *zap.Logger) error {
	written, err := st.Append(listings)
	if err != nil {
		return fmt.Errorf("saving listings: %w", err)
	}

	logger.Info("pipeline completed",
		zap.Int("matched", listings.Len()),
		zap.Int("written", written),
		zap.String("csv", st.Path()),
	)

	return nil
}

func reportByCompany(listings *jobboard.Listings, logger *zap.Logger) error {
	pretty, err := json.MarshalIndent(listings.ReportByCompany(), "", "  ")
	if err != nil {
		return fmt.Errorf("report by company: %w", err)
	}

	logger.Info(string(pretty), zap.Int("listings_count", listings.Len()))
	return nil
}

func prepareBoards(cfg *config.Config, logger *zap.Logger) (*jobboard.Manager, error) {
	appKey, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: cfg.Adzuna.AppKey,
		File:  cfg.Adzuna.AppKeyFile,
		Env:   "ADZUNA_APP_KEY",
	})
	if err != nil {
		return nil, err
	}

	client, err := adzuna.New(logger, &adzuna.Config{
		AppID:             cfg.Adzuna.AppID,
		AppKey:            appKey,
		Country:           cfg.Search.Country,
		RequestsPerSecond: cfg.Adzuna.RequestsPerSecond,
		MaxRetries:        cfg.Adzuna.MaxRetries,
		RetryDelay:        cfg.Adzuna.RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	return jobboard.NewManager(logger, client), nil
}

func prepareMatcher(ctx context.Context, cfg *config.AI, logger *zap.Logger) (ai.Matcher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GOOGLE_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	aiLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))
	aiLogger = loggerWithAI(aiLogger, provider, cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, aiLogger)
	if err != nil {
		return nil, err
	}

	matcherLogger := loggerWithAI(logger, provider, generator.Model()).
		With(zap.Float64("minimum_score", cfg.MinimumScore))

	return gemini.NewMatcher(generator, cfg.MinimumScore, cfg.Gemini.MaxLogLength, matcherLogger), nil
}

func loggerWithAI(l *zap.Logger, provider, model string) *zap.Logger {
	if provider == "" {
		provider = "gemini"
	}
	return logger.WithAIFields(l, provider, model)
}

func prepareFilters(cfg *config.Config, st *store.CSV, matcher ai.Matcher, resumeText string, logger *zap.Logger) *filtering.Filtering {
	aiFilter := filtering.NewAIFit(&filtering.AIFitFilterConfig{
		Enabled:      matcher != nil,
		Provider:     aiProvider(cfg.AI),
		Model:        aiModel(cfg.AI),
		MinimumScore: aiMinimumScore(cfg.AI),
	}, &filtering.AIFitFilterDeps{
		Logger:     logger,
		Matcher:    matcher,
		ResumeText: resumeText,
	})

	if matcher == nil {
		aiFilter.Disable("ai matching is not enabled")
	}

	steps := []filtering.Filter{
		filtering.NewSeen(st, logger),
		filtering.NewKeywords(cfg.Filters.DealBreakers, cfg.Filters.RequiredTerms, logger),
		filtering.NewExcludedCompanies(cfg.Filters.Companies, logger),
		aiFilter,
	}

	return filtering.New(steps, logger)
}

func aiProvider(cfg *config.AI) string {
	if cfg == nil {
		return ""
	}
	return cfg.Provider
}

func aiModel(cfg *config.AI) string {
	if cfg == nil || cfg.Gemini == nil {
		return ""
	}
	return cfg.Gemini.Model
}

func aiMinimumScore(cfg *config.AI) float64 {
	if cfg == nil {
		return 0
	}
	return cfg.MinimumScore
}
