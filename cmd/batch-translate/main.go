package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biocycle/translation-pipeline/internal/config"
	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/pipeline"
	"github.com/biocycle/translation-pipeline/internal/store"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

const (
	modelFlag       = "model"
	forceFlag       = "force"
	dryRunFlag      = "dry-run"
	concurrencyFlag = "concurrency"
	databaseFlag    = "database"
	debugFlag       = "debug"
)

var rootCmd = &cobra.Command{
	Use:   "batch-translate",
	Short: "Draft translations for storefront content in one shot",
	Long: "batch-translate runs the draft translation pass across every translatable " +
		"content type and all supported locales, persisting the results into the " +
		"translation memory and queueing the night passes, then exits.",
	// SilenceErrors allows us to explicitly log the error returned from rootCmd below.
	SilenceErrors: true,
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		debug, _ := command.Flags().GetBool(debugFlag)
		if debug {
			logger.SetLevel(logrus.DebugLevel)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		force, _ := command.Flags().GetBool(forceFlag)
		dryRun, _ := command.Flags().GetBool(dryRunFlag)
		concurrency, _ := command.Flags().GetInt(concurrencyFlag)

		if !dryRun {
			if err = cfg.RequireOpenAI(); err != nil {
				return err
			}
		}

		variants := model.AllVariants()
		if filter, _ := command.Flags().GetString(modelFlag); filter != "" {
			variant, err := model.ParseVariant(filter)
			if err != nil {
				return err
			}
			variants = []model.Variant{variant}
		}

		dsn, _ := command.Flags().GetString(databaseFlag)
		if dsn == "" {
			dsn = cfg.DatabaseURL
		}
		sqlStore, err := store.New(dsn, logger)
		if err != nil {
			return err
		}
		defer sqlStore.Close()

		openaiClient := translate.NewOpenAIClient(cfg.OpenAIKey, "")
		var groqClient translate.CompletionClient
		if cfg.HasGroq() {
			groqClient = translate.NewOpenAIClient(cfg.GroqKey, translate.GroqBaseURL)
		}

		p := pipeline.New(
			sqlStore,
			translate.NewDraftTranslator(openaiClient, logger),
			translate.NewImproveTranslator(groqClient, logger),
			translate.NewVerifyTranslator(openaiClient, logger),
			logger,
			pipeline.Options{
				Concurrency: concurrency,
				Force:       force,
				DryRun:      dryRun,
			},
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		counters, err := p.RunPassOne(ctx, variants)
		if counters != nil {
			logger.Infof("Batch translation finished: %d translated, %d skipped, %d failed",
				counters.Translated, counters.Skipped, counters.Failed)
		}
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String(modelFlag, "", "Restrict the run to one content type, e.g. Product or BlogPost")
	rootCmd.PersistentFlags().Bool(forceFlag, false, "Retranslate even when the stored content hash still matches")
	rootCmd.PersistentFlags().Bool(dryRunFlag, false, "Log what would be translated without calling providers or writing records")
	rootCmd.PersistentFlags().Int(concurrencyFlag, 3, "How many locales to translate in flight per batch")
	rootCmd.PersistentFlags().String(databaseFlag, "", "Postgres DSN of the storefront database; defaults to DATABASE_URL")
	rootCmd.PersistentFlags().Bool(debugFlag, false, "Whether to output debug logs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
