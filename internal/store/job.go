package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/model"
)

// TranslationJobTableName holds the persisted job queue.
const TranslationJobTableName = "TranslationJob"

var translationJobSelect sq.SelectBuilder

func init() {
	translationJobSelect = sq.
		Select(
			"ID",
			"Variant",
			"EntityID",
			"Pass",
			"Priority",
			"Status",
			"ScheduledAt",
			"StartAt",
			"CompleteAt",
			"Retries",
			"MaxRetries",
			"Error",
			"CreateAt",
		).
		From(TranslationJobTableName)
}

// EnqueueTranslationJob inserts a job unless an outstanding job for the
// same (entity, pass) already exists, in which case the insert is a silent
// no-op. The partial unique index enforces this under concurrency; the
// returned bool reports whether a row was actually created.
func (sqlStore *SQLStore) EnqueueTranslationJob(job *model.TranslationJob) (bool, error) {
	result, err := sqlStore.execBuilder(sqlStore.db, sq.
		Insert(TranslationJobTableName).
		SetMap(map[string]interface{}{
			"ID":          job.ID,
			"Variant":     job.Variant,
			"EntityID":    job.EntityID,
			"Pass":        job.Pass,
			"Priority":    job.Priority,
			"Status":      job.Status,
			"ScheduledAt": job.ScheduledAt,
			"StartAt":     job.StartAt,
			"CompleteAt":  job.CompleteAt,
			"Retries":     job.Retries,
			"MaxRetries":  job.MaxRetries,
			"Error":       job.Error,
			"CreateAt":    job.CreateAt,
		}).
		Suffix(`ON CONFLICT (Variant, EntityID, Pass)
			WHERE Status IN ('pending', 'processing') DO NOTHING`),
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to enqueue translation job")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read enqueue result")
	}

	return inserted > 0, nil
}

// GetDueTranslationJobs fetches pending jobs for a pass whose scheduled
// time has arrived, most urgent first.
func (sqlStore *SQLStore) GetDueTranslationJobs(pass int, limit int) ([]*model.TranslationJob, error) {
	jobs := []*model.TranslationJob{}
	err := sqlStore.selectBuilder(sqlStore.db, &jobs,
		translationJobSelect.
			Where("Pass = ?", pass).
			Where("Status = ?", model.JobStatusPending).
			Where("ScheduledAt <= ?", model.Timestamp()).
			OrderBy("Priority ASC", "ScheduledAt ASC").
			Limit(uint64(limit)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due translation jobs")
	}

	return jobs, nil
}

// ClaimTranslationJob moves a pending job into processing. The status guard
// keeps two pollers from claiming the same job.
func (sqlStore *SQLStore) ClaimTranslationJob(job *model.TranslationJob) error {
	job.Status = model.JobStatusProcessing
	job.StartAt = model.Timestamp()

	result, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(TranslationJobTableName).
		SetMap(map[string]interface{}{
			"Status":  job.Status,
			"StartAt": job.StartAt,
		}).
		Where("ID = ?", job.ID).
		Where("Status = ?", model.JobStatusPending),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to claim translation job %s", job.ID)
	}

	claimed, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read claim result")
	}
	if claimed == 0 {
		return errors.Errorf("translation job %s was not pending", job.ID)
	}

	return nil
}

// CompleteTranslationJob marks a processing job as done.
func (sqlStore *SQLStore) CompleteTranslationJob(job *model.TranslationJob) error {
	job.Status = model.JobStatusCompleted
	job.CompleteAt = model.Timestamp()

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(TranslationJobTableName).
		SetMap(map[string]interface{}{
			"Status":     job.Status,
			"CompleteAt": job.CompleteAt,
			"Error":      "",
		}).
		Where("ID = ?", job.ID),
	)
	return errors.Wrapf(err, "failed to complete translation job %s", job.ID)
}

// RescheduleTranslationJob returns a failed job to pending with its retry
// count incremented, pushed out by the retry delay.
func (sqlStore *SQLStore) RescheduleTranslationJob(job *model.TranslationJob, jobErr error) error {
	job.Status = model.JobStatusPending
	job.Retries++
	job.ScheduledAt = model.Timestamp() + model.RetryDelayMillis
	job.Error = jobErr.Error()

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(TranslationJobTableName).
		SetMap(map[string]interface{}{
			"Status":      job.Status,
			"Retries":     job.Retries,
			"ScheduledAt": job.ScheduledAt,
			"Error":       job.Error,
		}).
		Where("ID = ?", job.ID),
	)
	return errors.Wrapf(err, "failed to reschedule translation job %s", job.ID)
}

// FailTranslationJob parks a job in the terminal failed status, keeping the
// last error for operator inspection.
func (sqlStore *SQLStore) FailTranslationJob(job *model.TranslationJob, jobErr error) error {
	job.Status = model.JobStatusFailed
	job.CompleteAt = model.Timestamp()
	job.Error = jobErr.Error()

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(TranslationJobTableName).
		SetMap(map[string]interface{}{
			"Status":     job.Status,
			"CompleteAt": job.CompleteAt,
			"Error":      job.Error,
		}).
		Where("ID = ?", job.ID),
	)
	return errors.Wrapf(err, "failed to mark translation job %s as failed", job.ID)
}

// PendingTranslationJobCount counts pending jobs for a pass, due or not.
func (sqlStore *SQLStore) PendingTranslationJobCount(pass int) (int64, error) {
	var count int64
	err := sqlStore.getBuilder(sqlStore.db, &count,
		sq.Select("COUNT(*)").
			From(TranslationJobTableName).
			Where("Pass = ?", pass).
			Where("Status = ?", model.JobStatusPending),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count pending translation jobs")
	}

	return count, nil
}

// TranslationJobSummary aggregates the queue grouped by (pass, status) for
// the status report.
func (sqlStore *SQLStore) TranslationJobSummary() ([]*model.JobStatusCount, error) {
	summary := []*model.JobStatusCount{}
	err := sqlStore.selectBuilder(sqlStore.db, &summary,
		sq.Select("Pass", "Status", "COUNT(*) AS Count").
			From(TranslationJobTableName).
			GroupBy("Pass", "Status").
			OrderBy("Pass ASC", "Status ASC"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize the translation job queue")
	}

	return summary, nil
}
