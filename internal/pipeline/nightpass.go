package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

// NightRunLimit bounds how many jobs one night run will drain, keeping the
// latency of a single cycle bounded.
const NightRunLimit = 500

// RunNightPass drains due jobs for the improvement or verification pass.
// Each job revises every locale record of its entity; a failure anywhere in
// a job marks the whole job for retry, so the job is atomic at the entity
// level.
func (p *Pipeline) RunNightPass(ctx context.Context, pass int, limit int) (*Counters, error) {
	if pass != model.PassImprove && pass != model.PassVerify {
		return nil, errors.Errorf("pass %d is not a night pass", pass)
	}

	jobs, err := p.store.GetDueTranslationJobs(pass, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch due pass %d jobs", pass)
	}

	p.logger.WithField("pass", pass).Infof("Night pass starting with %d due jobs", len(jobs))

	counters := &Counters{}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return counters, err
		}
		p.runNightJob(ctx, job, counters)
	}

	return counters, nil
}

func (p *Pipeline) runNightJob(ctx context.Context, job *model.TranslationJob, counters *Counters) {
	logger := p.logger.WithFields(map[string]interface{}{
		"job":     job.ID,
		"pass":    job.Pass,
		"variant": job.Variant,
		"entity":  job.EntityID,
	})

	if err := p.store.ClaimTranslationJob(job); err != nil {
		// Most likely another runner got there first.
		logger.WithError(err).Warn("Failed to claim job")
		return
	}

	if err := p.reviseEntity(ctx, job, counters); err != nil {
		if err := p.settleJob(job, err); err != nil {
			logger.WithError(err).Error("Failed to record the job failure")
		}
		return
	}

	if err := p.store.CompleteTranslationJob(job); err != nil {
		logger.WithError(err).Error("Failed to mark the job completed")
		return
	}

	// Completing the improvement pass is the only path that creates a
	// verification job. The verification pass is terminal.
	if job.Pass == model.PassImprove {
		next := model.NewTranslationJob(job.Variant, job.EntityID, model.PassVerify, nextOccurrence(time.Now(), VerifyHour))
		if _, err := p.store.EnqueueTranslationJob(next); err != nil {
			logger.WithError(err).Error("Failed to enqueue the verification job")
		}
	}
}

// reviseEntity re-reads the source entity and its full locale record set
// and runs the pass translator over each record. Fields the provider does
// not return are treated as already acceptable and left untouched; a record
// with no returned fields is not modified at all.
func (p *Pipeline) reviseEntity(ctx context.Context, job *model.TranslationJob, counters *Counters) error {
	translator := p.improve
	quality := model.QualityImproved
	if job.Pass == model.PassVerify {
		translator = p.verify
		quality = model.QualityVerified
	}

	desc, err := model.Descriptor(job.Variant)
	if err != nil {
		return err
	}

	entity, err := p.store.GetSourceEntity(job.Variant, job.EntityID)
	if err != nil {
		return errors.Wrap(err, "failed to read the source entity")
	}
	if entity == nil || !entity.HasContent() {
		p.logger.WithField("job", job.ID).Warn("Source entity is gone or empty; nothing to revise")
		return nil
	}

	records, err := p.store.GetTranslationRecordsForEntity(job.Variant, job.EntityID)
	if err != nil {
		return errors.Wrap(err, "failed to read the entity's translation records")
	}

	fields := sourceFields(desc, entity)

	byLocale := make(map[string]*model.TranslationRecord, len(records))
	locales := make([]string, 0, len(records))
	for _, record := range records {
		byLocale[record.Locale] = record
		locales = append(locales, record.Locale)
	}

	var mu sync.Mutex
	var firstErr error

	p.forEachBatch(locales, func(locale string) {
		record := byLocale[locale]
		logger := p.logger.WithFields(map[string]interface{}{
			"job":    job.ID,
			"pass":   job.Pass,
			"locale": locale,
		})

		revised, err := translator.Translate(ctx, translate.Request{
			Locale:  locale,
			Source:  fields,
			Current: record.Fields,
		})
		if err != nil {
			logger.WithError(err).Error("Revision translation failed")
			counters.failed()
			mu.Lock()
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to revise locale %s", locale)
			}
			mu.Unlock()
			return
		}

		if len(revised) == 0 {
			// Either the improvement pass is disabled or the provider had
			// nothing to say; the record stands as it is.
			logger.Debug("No revised fields returned; record left untouched")
			counters.skipped()
			return
		}

		for name, value := range revised {
			if value != "" {
				record.Fields[name] = value
			}
		}
		record.QualityLevel = quality
		record.TranslatedBy = translator.Name()
		record.IsApproved = false

		if err := p.store.UpsertTranslationRecord(record); err != nil {
			logger.WithError(err).Error("Failed to persist the revised translation")
			counters.failed()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}

		counters.translated()
	})

	return firstErr
}
