package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/content"
	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

// RunPassOne drafts translations for every entity of the given variants.
// Per-locale failures are logged and counted without aborting sibling
// locales or the entity loop; the missing locales are picked up on the next
// run because their records never get a matching hash.
func (p *Pipeline) RunPassOne(ctx context.Context, variants []model.Variant) (*Counters, error) {
	counters := &Counters{}

	for _, variant := range variants {
		entities, err := p.store.GetSourceEntities(variant)
		if err != nil {
			return counters, errors.Wrapf(err, "failed to read %s entities", variant)
		}

		p.logger.WithField("variant", variant).Infof("Drafting translations for %d entities", len(entities))

		for _, entity := range entities {
			if err := ctx.Err(); err != nil {
				return counters, err
			}
			p.draftEntity(ctx, variant, entity, counters)
		}
	}

	return counters, nil
}

// RunPassOneJob performs the draft work for one queued job, owning its
// status transitions. The daemon drains Pass 1 jobs through here.
func (p *Pipeline) RunPassOneJob(ctx context.Context, job *model.TranslationJob) error {
	if err := p.store.ClaimTranslationJob(job); err != nil {
		return err
	}

	logger := p.logger.WithFields(map[string]interface{}{
		"job":     job.ID,
		"variant": job.Variant,
		"entity":  job.EntityID,
	})

	entity, err := p.store.GetSourceEntity(job.Variant, job.EntityID)
	if err != nil {
		return p.settleJob(job, errors.Wrap(err, "failed to read the source entity"))
	}
	if entity == nil {
		// The source row vanished between enqueue and pick-up; nothing to
		// translate, so the job completes as a no-op.
		logger.Warn("Source entity no longer exists; completing job without work")
		return p.store.CompleteTranslationJob(job)
	}

	counters := &Counters{}
	p.draftEntity(ctx, job.Variant, entity, counters)
	if counters.Failed > 0 {
		return p.settleJob(job, errors.Errorf("%d locales failed to draft", counters.Failed))
	}

	logger.WithField("translated", counters.Translated).Info("Draft job complete")
	return p.store.CompleteTranslationJob(job)
}

// settleJob applies the retry policy to a failed job: back to pending with
// a delay while retries remain, terminal failed once they are exhausted.
func (p *Pipeline) settleJob(job *model.TranslationJob, jobErr error) error {
	logger := p.logger.WithField("job", job.ID).WithError(jobErr)

	if job.RetriesExhausted() {
		logger.Errorf("Job failed with retries exhausted (%d/%d)", job.Retries, job.MaxRetries)
		return p.store.FailTranslationJob(job, jobErr)
	}

	logger.Warnf("Job failed; retry %d of %d scheduled", job.Retries+1, job.MaxRetries)
	return p.store.RescheduleTranslationJob(job, jobErr)
}

// draftEntity runs Pass 1 for one entity across the requested locales.
func (p *Pipeline) draftEntity(ctx context.Context, variant model.Variant, entity *model.SourceEntity, counters *Counters) {
	desc, err := model.Descriptor(variant)
	if err != nil {
		p.logger.WithError(err).Error("Unknown variant reached the draft pass")
		return
	}

	logger := p.logger.WithFields(map[string]interface{}{
		"variant": variant,
		"entity":  entity.ID,
	})

	if !entity.HasContent() {
		logger.Debug("Entity has no translatable content; skipping")
		return
	}

	hash := content.HashFields(fullFieldSet(desc, entity))
	fields := sourceFields(desc, entity)

	var translatedAny int64
	p.forEachBatch(p.opts.Locales, func(locale string) {
		localeLogger := logger.WithField("locale", locale)

		existing, err := p.store.GetTranslationRecord(variant, entity.ID, locale)
		if err != nil {
			localeLogger.WithError(err).Error("Failed to read the existing translation record")
			counters.failed()
			return
		}

		if !p.opts.Force && existing != nil && existing.Fresh(hash) {
			localeLogger.Debug("Translation is fresh; skipping")
			counters.skipped()
			return
		}

		if p.opts.DryRun {
			localeLogger.Info("Would draft translation (dry run)")
			counters.translated()
			return
		}

		translated, err := p.draft.Translate(ctx, translate.Request{
			Locale: locale,
			Source: fields,
		})
		if err != nil {
			localeLogger.WithError(err).Error("Draft translation failed")
			counters.failed()
			return
		}
		if len(translated) == 0 {
			localeLogger.Warn("Provider response contained no usable fields")
			counters.failed()
			return
		}

		record := &model.TranslationRecord{
			Variant:      variant,
			EntityID:     entity.ID,
			Locale:       locale,
			Fields:       mergeFields(existing, translated),
			ContentHash:  hash,
			QualityLevel: model.QualityDraft,
			TranslatedBy: p.draft.Name(),
			IsApproved:   false,
		}
		if existing != nil {
			record.ID = existing.ID
			record.CreateAt = existing.CreateAt
		}

		if err := p.store.UpsertTranslationRecord(record); err != nil {
			localeLogger.WithError(err).Error("Failed to persist the draft translation")
			counters.failed()
			return
		}

		atomic.StoreInt64(&translatedAny, 1)
		counters.translated()
	})

	if atomic.LoadInt64(&translatedAny) == 0 {
		return
	}

	// One improvement job per entity, not per locale; the night passes
	// revise every locale record in a single job. Enqueueing is idempotent,
	// so an outstanding job absorbs this silently.
	job := model.NewTranslationJob(variant, entity.ID, model.PassImprove, nextOccurrence(time.Now(), ImproveHour))
	if _, err := p.store.EnqueueTranslationJob(job); err != nil {
		logger.WithError(err).Error("Failed to enqueue the improvement job")
	}
}

// mergeFields overlays newly translated fields onto the previously stored
// ones. A field the provider did not return keeps its prior value; it is
// never replaced with empty text.
func mergeFields(existing *model.TranslationRecord, translated map[string]string) model.FieldMap {
	merged := model.FieldMap{}
	if existing != nil {
		for name, value := range existing.Fields {
			merged[name] = value
		}
	}
	for name, value := range translated {
		if value != "" {
			merged[name] = value
		}
	}
	return merged
}
