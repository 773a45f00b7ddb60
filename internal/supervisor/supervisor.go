// Package supervisor runs the long-lived scheduling loop of the
// translation daemon.
package supervisor

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/pipeline"
)

const (
	// tickInterval is how often the supervisor wakes to drain due work.
	tickInterval = 5 * time.Minute

	// passOneBatchLimit bounds how many draft jobs one tick will run.
	passOneBatchLimit = 10
)

// runner is the slice of the pipeline the supervisor drives.
type runner interface {
	RunPassOneJob(ctx context.Context, job *model.TranslationJob) error
	RunNightPass(ctx context.Context, pass int, limit int) (*pipeline.Counters, error)
}

// jobStore is the slice of the store the supervisor reads directly.
type jobStore interface {
	GetDueTranslationJobs(pass int, limit int) ([]*model.TranslationJob, error)
	PendingTranslationJobCount(pass int) (int64, error)
}

// Supervisor wakes every few minutes, drains due draft jobs inline, and
// fires the night passes once per calendar day at their fixed local hours.
// The once-per-day guards live on the struct, not in package state, so the
// scheduler is a single testable unit.
//
// Known limitation, preserved from the storefront's observed behavior: the
// night triggers fire only when a tick lands inside the trigger hour. If
// the process is down for the whole of 02:00 (or 04:00) local time, that
// day's pass silently waits for the next day's matching hour; there is no
// catch-up sweep.
type Supervisor struct {
	runner runner
	store  jobStore
	logger log.FieldLogger

	// Dates (yyyy-mm-dd, local time) on which each trigger last fired.
	lastNightRun    string
	lastVerifySweep string

	stop chan struct{}
	done chan struct{}
}

// New returns a Supervisor prepared to run the daemon loop.
func New(runner runner, store jobStore, logger log.FieldLogger) *Supervisor {
	return &Supervisor{
		runner: runner,
		store:  store,
		logger: logger.WithField("supervisor", model.NewID()),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the supervisor loop on a new goroutine. The first tick fires
// immediately so a freshly started daemon drains backlog without waiting
// out a full interval.
func (s *Supervisor) Start() {
	s.logger.Info("Translation supervisor started")
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		s.tick(time.Now())
		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.tick(now)
			}
		}
	}()
}

// Stop ends the loop after any in-flight tick finishes. Ticks are never
// interrupted mid-job.
func (s *Supervisor) Stop() {
	close(s.stop)
	<-s.done
	s.logger.Info("Translation supervisor stopped")
}

// tick is one scheduler cycle. It is deterministic in now, which keeps the
// time-of-day logic testable.
func (s *Supervisor) tick(now time.Time) {
	ctx := context.Background()
	today := now.Format("2006-01-02")

	s.drainDraftJobs(ctx)

	if now.Hour() == pipeline.ImproveHour && s.lastNightRun != today {
		s.lastNightRun = today
		s.runNight(ctx)
	}

	if now.Hour() == pipeline.VerifyHour && s.lastVerifySweep != today {
		s.lastVerifySweep = today
		s.verifySweep(ctx)
	}
}

// drainDraftJobs runs due Pass 1 jobs inline, performing the translation
// work itself rather than merely enqueuing it.
func (s *Supervisor) drainDraftJobs(ctx context.Context) {
	jobs, err := s.store.GetDueTranslationJobs(model.PassDraft, passOneBatchLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to query for due draft jobs")
		return
	}

	for _, job := range jobs {
		if err := s.runner.RunPassOneJob(ctx, job); err != nil {
			s.logger.WithError(err).WithField("job", job.ID).Error("Draft job failed")
		}
	}
}

// runNight performs the full night routine: the improvement pass followed
// by the verification pass.
func (s *Supervisor) runNight(ctx context.Context) {
	s.logger.Info("Starting the night translation passes")

	if counters, err := s.runner.RunNightPass(ctx, model.PassImprove, pipeline.NightRunLimit); err != nil {
		s.logger.WithError(err).Error("Improvement pass failed")
	} else {
		s.logger.Infof("Improvement pass done: %d revised, %d skipped, %d failed",
			counters.Translated, counters.Skipped, counters.Failed)
	}

	if counters, err := s.runner.RunNightPass(ctx, model.PassVerify, pipeline.NightRunLimit); err != nil {
		s.logger.WithError(err).Error("Verification pass failed")
	} else {
		s.logger.Infof("Verification pass done: %d revised, %d skipped, %d failed",
			counters.Translated, counters.Skipped, counters.Failed)
	}
}

// verifySweep is the 04:00 safety net: it only runs the verification pass
// when verification jobs are still pending after the night routine.
func (s *Supervisor) verifySweep(ctx context.Context) {
	pending, err := s.store.PendingTranslationJobCount(model.PassVerify)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count pending verification jobs")
		return
	}
	if pending == 0 {
		return
	}

	s.logger.Infof("Verification sweep picking up %d pending jobs", pending)
	if _, err := s.runner.RunNightPass(ctx, model.PassVerify, pipeline.NightRunLimit); err != nil {
		s.logger.WithError(err).Error("Verification sweep failed")
	}
}
