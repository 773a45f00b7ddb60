// Package pipeline sequences content through the three translation passes:
// a draft pass over source fields, an improvement pass, and a verification
// pass, each completion enqueuing the next. Pass ordering is enforced
// purely through the enqueue chain; no other code path creates a Pass 2 or
// Pass 3 job.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

// Store is the slice of the data store the pipeline consumes.
type Store interface {
	GetSourceEntities(variant model.Variant) ([]*model.SourceEntity, error)
	GetSourceEntity(variant model.Variant, id string) (*model.SourceEntity, error)
	CountSourceEntities(variant model.Variant) (int64, error)

	GetTranslationRecord(variant model.Variant, entityID, locale string) (*model.TranslationRecord, error)
	GetTranslationRecordsForEntity(variant model.Variant, entityID string) ([]*model.TranslationRecord, error)
	UpsertTranslationRecord(record *model.TranslationRecord) error
	CountTranslationRecords(variant model.Variant) (int64, error)
	TranslationQualityBreakdown(variant model.Variant) (map[string]int64, error)

	EnqueueTranslationJob(job *model.TranslationJob) (bool, error)
	GetDueTranslationJobs(pass int, limit int) ([]*model.TranslationJob, error)
	ClaimTranslationJob(job *model.TranslationJob) error
	CompleteTranslationJob(job *model.TranslationJob) error
	RescheduleTranslationJob(job *model.TranslationJob, jobErr error) error
	FailTranslationJob(job *model.TranslationJob, jobErr error) error
	PendingTranslationJobCount(pass int) (int64, error)
	TranslationJobSummary() ([]*model.JobStatusCount, error)
}

// Local clock hours at which the night passes fire.
const (
	ImproveHour = 2
	VerifyHour  = 4
)

const (
	defaultConcurrency = 3
	defaultBatchPause  = 300 * time.Millisecond
)

// Options tune a pipeline run.
type Options struct {
	// Concurrency is how many locales are translated in flight per batch.
	Concurrency int
	// BatchPause is the deliberate throttle between locale batches,
	// respecting provider throughput limits.
	BatchPause time.Duration
	// Force bypasses the hash-freshness check and retranslates everything
	// requested, useful after a glossary or prompt change.
	Force bool
	// DryRun logs decisions without calling providers or writing records.
	DryRun bool
	// Locales restricts the target locales; empty means all supported.
	Locales []string
}

// Counters accumulates per-locale outcomes across a run. Fields are
// updated atomically from concurrent locale batches.
type Counters struct {
	Translated int64
	Skipped    int64
	Failed     int64
}

func (c *Counters) translated() { atomic.AddInt64(&c.Translated, 1) }
func (c *Counters) skipped()    { atomic.AddInt64(&c.Skipped, 1) }
func (c *Counters) failed()     { atomic.AddInt64(&c.Failed, 1) }

// Pipeline drives entities through the translation passes. Provider
// clients are injected once at construction; there are no ambient
// singletons.
type Pipeline struct {
	store   Store
	draft   translate.FieldTranslator
	improve translate.FieldTranslator
	verify  translate.FieldTranslator
	logger  log.FieldLogger
	opts    Options
}

// New builds a Pipeline, filling in option defaults.
func New(store Store, draft, improve, verify translate.FieldTranslator, logger log.FieldLogger, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = defaultBatchPause
	}
	if len(opts.Locales) == 0 {
		opts.Locales = model.SupportedLocales()
	}
	return &Pipeline{
		store:   store,
		draft:   draft,
		improve: improve,
		verify:  verify,
		logger:  logger,
		opts:    opts,
	}
}

// forEachBatch runs fn over items in fixed-size concurrent batches. Batches
// are strictly sequential: the next does not start until every call in the
// current one has settled, success or failure alike, with a fixed pause
// between batches.
func (p *Pipeline) forEachBatch(items []string, fn func(item string)) {
	for start := 0; start < len(items); start += p.opts.Concurrency {
		end := start + p.opts.Concurrency
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item string) {
				defer wg.Done()
				fn(item)
			}(item)
		}
		wg.Wait()

		if end < len(items) {
			time.Sleep(p.opts.BatchPause)
		}
	}
}

// nextOccurrence returns the next local occurrence of the given hour in
// epoch milliseconds, rolling to tomorrow when the hour has already passed.
func nextOccurrence(now time.Time, hour int) int64 {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.UnixNano() / int64(time.Millisecond)
}

// sourceFields returns the entity's non-empty fields in descriptor order,
// the shape the provider adapters consume.
func sourceFields(desc *model.VariantDescriptor, entity *model.SourceEntity) []translate.Field {
	fields := make([]translate.Field, 0, len(desc.Fields))
	for _, name := range desc.Fields {
		if value := entity.Fields[name]; value != "" {
			fields = append(fields, translate.Field{Name: name, Value: value})
		}
	}
	return fields
}

// fullFieldSet maps every field of the variant, including empty ones, so
// clearing a field also changes the content hash.
func fullFieldSet(desc *model.VariantDescriptor, entity *model.SourceEntity) map[string]string {
	fields := make(map[string]string, len(desc.Fields))
	for _, name := range desc.Fields {
		fields[name] = entity.Fields[name]
	}
	return fields
}
