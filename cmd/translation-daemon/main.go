package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biocycle/translation-pipeline/internal/api"
	"github.com/biocycle/translation-pipeline/internal/config"
	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/pipeline"
	"github.com/biocycle/translation-pipeline/internal/store"
	"github.com/biocycle/translation-pipeline/internal/supervisor"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

const (
	batchFlag       = "batch"
	nightFlag       = "night"
	statusFlag      = "status"
	modelFlag       = "model"
	forceFlag       = "force"
	concurrencyFlag = "concurrency"
	databaseFlag    = "database"
	listenFlag      = "listen"
	debugFlag       = "debug"
)

var rootCmd = &cobra.Command{
	Use:   "translation-daemon",
	Short: "The storefront translation scheduler",
	Long: "translation-daemon drives content through the three-pass translation " +
		"pipeline: with no mode flag it runs forever, draining due draft jobs every " +
		"five minutes and firing the night passes at their fixed local hours; the " +
		"--batch, --night and --status flags run one-shot modes instead.",
	// SilenceErrors allows us to explicitly log the error returned from rootCmd below.
	SilenceErrors: true,
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		debug, _ := command.Flags().GetBool(debugFlag)
		if debug {
			logger.SetLevel(logrus.DebugLevel)
		}

		batch, _ := command.Flags().GetBool(batchFlag)
		night, _ := command.Flags().GetBool(nightFlag)
		status, _ := command.Flags().GetBool(statusFlag)
		if countTrue(batch, night, status) > 1 {
			return errors.New("--batch, --night and --status are mutually exclusive")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// The status report only reads the database; every other mode
		// translates and needs the mandatory credential up front.
		if !status {
			if err = cfg.RequireOpenAI(); err != nil {
				return err
			}
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

		force, _ := command.Flags().GetBool(forceFlag)
		concurrency, _ := command.Flags().GetInt(concurrencyFlag)

		openaiClient := translate.NewOpenAIClient(cfg.OpenAIKey, "")
		var groqClient translate.CompletionClient
		if cfg.HasGroq() {
			groqClient = translate.NewOpenAIClient(cfg.GroqKey, translate.GroqBaseURL)
		} else {
			logger.Warn("GROQ_API_KEY is not set; the improvement pass will leave translations unchanged")
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
			},
		)

		switch {
		case status:
			return runStatus(p)
		case batch:
			return runBatch(command, p)
		case night:
			return runNight(p)
		default:
			return runDaemon(command, sqlStore, p)
		}
	},
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func runBatch(command *cobra.Command, p *pipeline.Pipeline) error {
	variants := model.AllVariants()
	if filter, _ := command.Flags().GetString(modelFlag); filter != "" {
		variant, err := model.ParseVariant(filter)
		if err != nil {
			return err
		}
		variants = []model.Variant{variant}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	counters, err := p.RunPassOne(ctx, variants)
	if counters != nil {
		logger.Infof("Batch translation finished: %d translated, %d skipped, %d failed",
			counters.Translated, counters.Skipped, counters.Failed)
	}
	return err
}

func runNight(p *pipeline.Pipeline) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, pass := range []int{model.PassImprove, model.PassVerify} {
		counters, err := p.RunNightPass(ctx, pass, pipeline.NightRunLimit)
		if err != nil {
			return err
		}
		logger.Infof("Pass %d finished: %d revised, %d skipped, %d failed",
			pass, counters.Translated, counters.Skipped, counters.Failed)
	}
	return nil
}

func runDaemon(command *cobra.Command, sqlStore *store.SQLStore, p *pipeline.Pipeline) error {
	logger.Info("Starting the translation daemon")

	sup := supervisor.New(p, sqlStore, logger)
	sup.Start()

	listen, _ := command.Flags().GetString(listenFlag)
	router := mux.NewRouter()
	api.Register(router, &api.Context{
		Reporter: p,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         listen,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Status API listening")
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Failed to listen and serve")
		}
	}()

	c := make(chan os.Signal, 1)
	// We'll accept graceful shutdowns when quit via SIGINT (Ctrl+C) or
	// SIGTERM. SIGKILL and SIGQUIT will not be caught.
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	logger.WithField("shutdown-signal", sig.String()).Info("Shutting down")

	sup.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func init() {
	rootCmd.PersistentFlags().Bool(batchFlag, false, "Run the draft pass once across all content, then exit")
	rootCmd.PersistentFlags().Bool(nightFlag, false, "Run the improvement and verification passes once, then exit")
	rootCmd.PersistentFlags().Bool(statusFlag, false, "Report translation coverage and queue health, then exit")
	rootCmd.PersistentFlags().String(modelFlag, "", "Restrict --batch to one content type, e.g. Product or BlogPost")
	rootCmd.PersistentFlags().Bool(forceFlag, false, "Retranslate even when the stored content hash still matches")
	rootCmd.PersistentFlags().Int(concurrencyFlag, 3, "How many locales to translate in flight per batch")
	rootCmd.PersistentFlags().String(databaseFlag, "", "Postgres DSN of the storefront database; defaults to DATABASE_URL")
	rootCmd.PersistentFlags().String(listenFlag, "localhost:8089", "Local interface and port for the daemon's status API")
	rootCmd.PersistentFlags().Bool(debugFlag, false, "Whether to output debug logs")

	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
