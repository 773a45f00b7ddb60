package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/biocycle/translation-pipeline/internal/content"
	"github.com/biocycle/translation-pipeline/internal/model"
	"github.com/biocycle/translation-pipeline/internal/translate"
)

// fakeStore is an in-memory Store for exercising the orchestrator without a
// database. All methods are safe for the pipeline's concurrent locale
// batches.
type fakeStore struct {
	mu       sync.Mutex
	entities map[model.Variant][]*model.SourceEntity
	records  map[string]*model.TranslationRecord
	jobs     []*model.TranslationJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities: map[model.Variant][]*model.SourceEntity{},
		records:  map[string]*model.TranslationRecord{},
	}
}

func recordKey(variant model.Variant, entityID, locale string) string {
	return fmt.Sprintf("%s/%s/%s", variant, entityID, locale)
}

func (s *fakeStore) GetSourceEntities(variant model.Variant) ([]*model.SourceEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities[variant], nil
}

func (s *fakeStore) GetSourceEntity(variant model.Variant, id string) (*model.SourceEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities[variant] {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CountSourceEntities(variant model.Variant) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entities[variant])), nil
}

func (s *fakeStore) GetTranslationRecord(variant model.Variant, entityID, locale string) (*model.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[recordKey(variant, entityID, locale)], nil
}

func (s *fakeStore) GetTranslationRecordsForEntity(variant model.Variant, entityID string) ([]*model.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := []*model.TranslationRecord{}
	for _, r := range s.records {
		if r.Variant == variant && r.EntityID == entityID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (s *fakeStore) UpsertTranslationRecord(record *model.TranslationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = model.NewID()
	}
	if record.CreateAt == 0 {
		record.CreateAt = model.Timestamp()
	}
	record.UpdateAt = model.Timestamp()
	s.records[recordKey(record.Variant, record.EntityID, record.Locale)] = record
	return nil
}

func (s *fakeStore) CountTranslationRecords(variant model.Variant) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.records {
		if r.Variant == variant {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) TranslationQualityBreakdown(variant model.Variant) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	breakdown := map[string]int64{}
	for _, r := range s.records {
		if r.Variant == variant {
			breakdown[r.QualityLevel]++
		}
	}
	return breakdown, nil
}

func (s *fakeStore) EnqueueTranslationJob(job *model.TranslationJob) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.Variant == job.Variant && j.EntityID == job.EntityID && j.Pass == job.Pass &&
			(j.Status == model.JobStatusPending || j.Status == model.JobStatusProcessing) {
			return false, nil
		}
	}
	s.jobs = append(s.jobs, job)
	return true, nil
}

func (s *fakeStore) GetDueTranslationJobs(pass int, limit int) ([]*model.TranslationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := []*model.TranslationJob{}
	for _, j := range s.jobs {
		if j.Pass == pass && j.Status == model.JobStatusPending && j.ScheduledAt <= model.Timestamp() {
			due = append(due, j)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (s *fakeStore) ClaimTranslationJob(job *model.TranslationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.Status != model.JobStatusPending {
		return fmt.Errorf("job %s was not pending", job.ID)
	}
	job.Status = model.JobStatusProcessing
	job.StartAt = model.Timestamp()
	return nil
}

func (s *fakeStore) CompleteTranslationJob(job *model.TranslationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = model.JobStatusCompleted
	job.CompleteAt = model.Timestamp()
	return nil
}

func (s *fakeStore) RescheduleTranslationJob(job *model.TranslationJob, jobErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = model.JobStatusPending
	job.Retries++
	job.ScheduledAt = model.Timestamp() + model.RetryDelayMillis
	job.Error = jobErr.Error()
	return nil
}

func (s *fakeStore) FailTranslationJob(job *model.TranslationJob, jobErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = model.JobStatusFailed
	job.CompleteAt = model.Timestamp()
	job.Error = jobErr.Error()
	return nil
}

func (s *fakeStore) PendingTranslationJobCount(pass int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, j := range s.jobs {
		if j.Pass == pass && j.Status == model.JobStatusPending {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) TranslationJobSummary() ([]*model.JobStatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]*model.JobStatusCount{}
	for _, j := range s.jobs {
		key := fmt.Sprintf("%d/%s", j.Pass, j.Status)
		if counts[key] == nil {
			counts[key] = &model.JobStatusCount{Pass: j.Pass, Status: j.Status}
		}
		counts[key].Count++
	}
	summary := []*model.JobStatusCount{}
	for _, c := range counts {
		summary = append(summary, c)
	}
	return summary, nil
}

func (s *fakeStore) jobsFor(pass int) []*model.TranslationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := []*model.TranslationJob{}
	for _, j := range s.jobs {
		if j.Pass == pass {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// fakeTranslator records requests and answers from a canned function.
type fakeTranslator struct {
	mu      sync.Mutex
	calls   []translate.Request
	respond func(req translate.Request) (map[string]string, error)
	name    string
}

func newFakeTranslator(name string, respond func(req translate.Request) (map[string]string, error)) *fakeTranslator {
	return &fakeTranslator{name: name, respond: respond}
}

// echoTranslator marks every source field as translated for the locale.
func echoTranslator(name string) *fakeTranslator {
	return newFakeTranslator(name, func(req translate.Request) (map[string]string, error) {
		out := map[string]string{}
		for _, f := range req.Source {
			out[f.Name] = "[" + req.Locale + "] " + f.Value
		}
		return out, nil
	})
}

func (f *fakeTranslator) Translate(_ context.Context, req translate.Request) (map[string]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeTranslator) Name() string { return f.name }

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() log.FieldLogger {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger
}

func newTestPipeline(store Store, draft, improve, verify translate.FieldTranslator, opts Options) *Pipeline {
	if opts.BatchPause == 0 {
		opts.BatchPause = time.Millisecond
	}
	return New(store, draft, improve, verify, testLogger(), opts)
}

func productEntity(id string) *model.SourceEntity {
	return &model.SourceEntity{
		ID: id,
		Fields: model.FieldMap{
			"name":        "BPC-157 5mg",
			"description": "Peptide de recherche...",
		},
	}
}

func productHash() string {
	desc, _ := model.Descriptor(model.VariantProduct)
	return content.HashFields(fullFieldSet(desc, productEntity("42")))
}

func TestRunPassOneDraftsEveryLocaleAndEnqueuesImprovement(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}

	draft := echoTranslator("openai/gpt-4o-mini")
	p := newTestPipeline(store, draft, echoTranslator("groq"), echoTranslator("verify"), Options{
		Concurrency: 2,
		Locales:     []string{"fr", "de"},
	})

	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.EqualValues(t, 2, counters.Translated)
	require.EqualValues(t, 0, counters.Skipped)
	require.EqualValues(t, 0, counters.Failed)
	require.Equal(t, 2, draft.callCount())

	for _, locale := range []string{"fr", "de"} {
		record := store.records[recordKey(model.VariantProduct, "42", locale)]
		require.NotNil(t, record, "expected a record for locale %s", locale)
		require.Equal(t, model.QualityDraft, record.QualityLevel)
		require.Equal(t, productHash(), record.ContentHash)
		require.Equal(t, "openai/gpt-4o-mini", record.TranslatedBy)
		require.False(t, record.IsApproved)
		require.Equal(t, "["+locale+"] BPC-157 5mg", record.Fields["name"])
	}

	improveJobs := store.jobsFor(model.PassImprove)
	require.Len(t, improveJobs, 1, "exactly one improvement job per entity")
	require.Equal(t, "42", improveJobs[0].EntityID)
	require.Equal(t, model.JobStatusPending, improveJobs[0].Status)
	require.Equal(t, model.PriorityProduct, improveJobs[0].Priority)
	require.Empty(t, store.jobsFor(model.PassVerify), "pass 3 must only follow pass 2 completion")
}

func TestRunPassOneSkipsFreshRecords(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}

	draft := echoTranslator("draft")
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr", "de"},
	})

	_, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 2, draft.callCount())

	// Rerunning immediately must make zero provider calls and leave the
	// records untouched.
	before := store.records[recordKey(model.VariantProduct, "42", "fr")].UpdateAt
	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 2, draft.callCount())
	require.EqualValues(t, 2, counters.Skipped)
	require.EqualValues(t, 0, counters.Translated)
	require.Equal(t, before, store.records[recordKey(model.VariantProduct, "42", "fr")].UpdateAt)
}

func TestRunPassOneRetranslatesWhenSourceChanges(t *testing.T) {
	store := newFakeStore()
	entity := productEntity("42")
	store.entities[model.VariantProduct] = []*model.SourceEntity{entity}

	draft := echoTranslator("draft")
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
	})

	_, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 1, draft.callCount())

	entity.Fields["description"] = "Updated research notes."
	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 2, draft.callCount(), "a hash mismatch must trigger retranslation")
	require.EqualValues(t, 1, counters.Translated)
}

func TestRunPassOneForceOverridesFreshness(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}

	draft := echoTranslator("draft")
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr", "de"},
	})
	_, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)

	forced := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr", "de"},
		Force:   true,
	})
	counters, err := forced.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 4, draft.callCount())
	require.EqualValues(t, 2, counters.Translated)
}

func TestRunPassOneSkipsEntitiesWithoutContent(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantFaq] = []*model.SourceEntity{
		{ID: "empty", Fields: model.FieldMap{"question": "", "answer": ""}},
	}

	draft := echoTranslator("draft")
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
	})

	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantFaq})
	require.NoError(t, err)
	require.Equal(t, 0, draft.callCount())
	require.EqualValues(t, 0, counters.Translated)
	require.Empty(t, store.jobs)
}

func TestRunPassOneDryRunWritesNothing(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}

	draft := echoTranslator("draft")
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr", "de"},
		DryRun:  true,
	})

	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.Equal(t, 0, draft.callCount())
	require.EqualValues(t, 2, counters.Translated)
	require.Empty(t, store.records)
	require.Empty(t, store.jobs)
}

func TestRunPassOnePartialFailureSparesSiblingLocales(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}

	draft := newFakeTranslator("draft", func(req translate.Request) (map[string]string, error) {
		if req.Locale == "de" {
			return nil, fmt.Errorf("provider timeout")
		}
		return map[string]string{"name": "ok"}, nil
	})
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Concurrency: 2,
		Locales:     []string{"fr", "de", "es"},
	})

	counters, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	require.EqualValues(t, 2, counters.Translated)
	require.EqualValues(t, 1, counters.Failed)
	require.NotNil(t, store.records[recordKey(model.VariantProduct, "42", "fr")])
	require.NotNil(t, store.records[recordKey(model.VariantProduct, "42", "es")])
	require.Nil(t, store.records[recordKey(model.VariantProduct, "42", "de")])

	// A partial success still queues the improvement job.
	require.Len(t, store.jobsFor(model.PassImprove), 1)
}

func TestRunPassOneEnqueueIsIdempotent(t *testing.T) {
	store := newFakeStore()
	entity := productEntity("42")
	store.entities[model.VariantProduct] = []*model.SourceEntity{entity}

	p := newTestPipeline(store, echoTranslator("draft"), echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
		Force:   true,
	})

	_, err := p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)
	_, err = p.RunPassOne(context.Background(), []model.Variant{model.VariantProduct})
	require.NoError(t, err)

	require.Len(t, store.jobsFor(model.PassImprove), 1, "a second enqueue while one is outstanding must be a no-op")
}

func seedNightJob(store *fakeStore, pass int) *model.TranslationJob {
	job := model.NewTranslationJob(model.VariantProduct, "42", pass, model.Timestamp()-1)
	store.jobs = append(store.jobs, job)
	return job
}

func seedDraftRecords(store *fakeStore, locales ...string) {
	for _, locale := range locales {
		store.records[recordKey(model.VariantProduct, "42", locale)] = &model.TranslationRecord{
			ID:           model.NewID(),
			Variant:      model.VariantProduct,
			EntityID:     "42",
			Locale:       locale,
			Fields:       model.FieldMap{"name": "Nom brouillon", "description": "Description brouillon"},
			ContentHash:  productHash(),
			QualityLevel: model.QualityDraft,
			TranslatedBy: "openai/gpt-4o-mini",
		}
	}
}

func TestNightPassImprovesRecordsAndEnqueuesVerification(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr", "de")
	job := seedNightJob(store, model.PassImprove)

	improve := newFakeTranslator("groq/llama-3.3-70b-versatile", func(req translate.Request) (map[string]string, error) {
		// Only the name needed work; description is left out.
		return map[string]string{"name": "Nom amélioré"}, nil
	})
	p := newTestPipeline(store, echoTranslator("draft"), improve, echoTranslator("verify"), Options{})

	counters, err := p.RunNightPass(context.Background(), model.PassImprove, NightRunLimit)
	require.NoError(t, err)
	require.EqualValues(t, 2, counters.Translated)
	require.Equal(t, model.JobStatusCompleted, job.Status)

	for _, locale := range []string{"fr", "de"} {
		record := store.records[recordKey(model.VariantProduct, "42", locale)]
		require.Equal(t, "Nom amélioré", record.Fields["name"])
		require.Equal(t, "Description brouillon", record.Fields["description"], "unreturned fields must be left untouched")
		require.Equal(t, model.QualityImproved, record.QualityLevel)
		require.Equal(t, "groq/llama-3.3-70b-versatile", record.TranslatedBy)
		require.False(t, record.IsApproved)
	}

	verifyJobs := store.jobsFor(model.PassVerify)
	require.Len(t, verifyJobs, 1, "improvement completion must enqueue verification")
	require.Equal(t, model.JobStatusPending, verifyJobs[0].Status)
}

func TestNightPassEmptyResultLeavesRecordsUntouched(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr")
	job := seedNightJob(store, model.PassImprove)

	improve := newFakeTranslator("improve", func(req translate.Request) (map[string]string, error) {
		return map[string]string{}, nil
	})
	p := newTestPipeline(store, echoTranslator("draft"), improve, echoTranslator("verify"), Options{})

	counters, err := p.RunNightPass(context.Background(), model.PassImprove, NightRunLimit)
	require.NoError(t, err)
	require.EqualValues(t, 1, counters.Skipped)

	record := store.records[recordKey(model.VariantProduct, "42", "fr")]
	require.Equal(t, model.QualityDraft, record.QualityLevel, "an empty result must not bump the quality level")
	require.Equal(t, "Nom brouillon", record.Fields["name"])
	require.Equal(t, model.JobStatusCompleted, job.Status)
}

func TestNightPassVerifyIsTerminal(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr")
	job := seedNightJob(store, model.PassVerify)

	p := newTestPipeline(store, echoTranslator("draft"), echoTranslator("improve"), echoTranslator("openai/gpt-4o"), Options{})

	_, err := p.RunNightPass(context.Background(), model.PassVerify, NightRunLimit)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusCompleted, job.Status)
	require.Equal(t, model.QualityVerified, store.records[recordKey(model.VariantProduct, "42", "fr")].QualityLevel)

	// The verification pass enqueues nothing further.
	require.Len(t, store.jobs, 1)
}

func TestNightPassReschedulesFailedJobWithBackoff(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr")
	job := seedNightJob(store, model.PassImprove)

	improve := newFakeTranslator("improve", func(req translate.Request) (map[string]string, error) {
		return nil, fmt.Errorf("rate limited")
	})
	p := newTestPipeline(store, echoTranslator("draft"), improve, echoTranslator("verify"), Options{})

	before := model.Timestamp()
	_, err := p.RunNightPass(context.Background(), model.PassImprove, NightRunLimit)
	require.NoError(t, err)

	require.Equal(t, model.JobStatusPending, job.Status)
	require.Equal(t, 1, job.Retries)
	require.Contains(t, job.Error, "rate limited")
	require.GreaterOrEqual(t, job.ScheduledAt, before+model.RetryDelayMillis)
	require.Empty(t, store.jobsFor(model.PassVerify), "a failed improvement must not enqueue verification")
}

func TestNightPassFailsJobOnceRetriesAreExhausted(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr")
	job := seedNightJob(store, model.PassImprove)
	job.Retries = job.MaxRetries

	improve := newFakeTranslator("improve", func(req translate.Request) (map[string]string, error) {
		return nil, fmt.Errorf("rate limited")
	})
	p := newTestPipeline(store, echoTranslator("draft"), improve, echoTranslator("verify"), Options{})

	_, err := p.RunNightPass(context.Background(), model.PassImprove, NightRunLimit)
	require.NoError(t, err)

	require.Equal(t, model.JobStatusFailed, job.Status)
	require.Contains(t, job.Error, "rate limited")
}

func TestRunPassOneJobCompletesOnSuccess(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	job := seedNightJob(store, model.PassDraft)

	p := newTestPipeline(store, echoTranslator("draft"), echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
	})

	require.NoError(t, p.RunPassOneJob(context.Background(), job))
	require.Equal(t, model.JobStatusCompleted, job.Status)
	require.NotNil(t, store.records[recordKey(model.VariantProduct, "42", "fr")])
	require.Len(t, store.jobsFor(model.PassImprove), 1)
}

func TestRunPassOneJobCompletesWhenEntityIsGone(t *testing.T) {
	store := newFakeStore()
	job := seedNightJob(store, model.PassDraft)

	p := newTestPipeline(store, echoTranslator("draft"), echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
	})

	require.NoError(t, p.RunPassOneJob(context.Background(), job))
	require.Equal(t, model.JobStatusCompleted, job.Status)
	require.Empty(t, store.records)
}

func TestRunPassOneJobReschedulesOnFailure(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	job := seedNightJob(store, model.PassDraft)

	draft := newFakeTranslator("draft", func(req translate.Request) (map[string]string, error) {
		return nil, fmt.Errorf("provider down")
	})
	p := newTestPipeline(store, draft, echoTranslator("improve"), echoTranslator("verify"), Options{
		Locales: []string{"fr"},
	})

	require.NoError(t, p.RunPassOneJob(context.Background(), job))
	require.Equal(t, model.JobStatusPending, job.Status)
	require.Equal(t, 1, job.Retries)
}

func TestStatusReportsCoverageAndQueue(t *testing.T) {
	store := newFakeStore()
	store.entities[model.VariantProduct] = []*model.SourceEntity{productEntity("42")}
	seedDraftRecords(store, "fr", "de")
	seedNightJob(store, model.PassImprove)

	p := newTestPipeline(store, echoTranslator("draft"), echoTranslator("improve"), echoTranslator("verify"), Options{})

	report, err := p.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Variants, len(model.AllVariants()))

	product := report.Variants[0]
	require.Equal(t, model.VariantProduct, product.Variant)
	require.EqualValues(t, 1, product.Entities)
	require.EqualValues(t, 2, product.Records)
	require.EqualValues(t, len(model.SupportedLocales()), product.Expected)
	require.EqualValues(t, 2, product.Quality[model.QualityDraft])

	require.Len(t, report.Jobs, 1)
	require.Equal(t, model.PassImprove, report.Jobs[0].Pass)
	require.EqualValues(t, 1, report.Jobs[0].Count)
}

func TestNextOccurrence(t *testing.T) {
	loc := time.Local

	t.Run("hour still ahead today", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 1, 30, 0, 0, loc)
		at := time.UnixMilli(nextOccurrence(now, 2)).In(loc)
		require.Equal(t, time.Date(2026, 8, 30, 2, 0, 0, 0, loc), at)
	})

	t.Run("hour already passed rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 14, 0, 0, 0, loc)
		at := time.UnixMilli(nextOccurrence(now, 2)).In(loc)
		require.Equal(t, time.Date(2026, 8, 31, 2, 0, 0, 0, loc), at)
	})

	t.Run("exactly on the hour rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 4, 0, 0, 0, loc)
		at := time.UnixMilli(nextOccurrence(now, 4)).In(loc)
		require.Equal(t, time.Date(2026, 8, 31, 4, 0, 0, 0, loc), at)
	})
}
