package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/model"
)

// TranslationRecordTableName holds the translation memory.
const TranslationRecordTableName = "TranslationRecord"

var translationRecordSelect sq.SelectBuilder

func init() {
	translationRecordSelect = sq.
		Select(
			"ID",
			"Variant",
			"EntityID",
			"Locale",
			"Fields",
			"ContentHash",
			"QualityLevel",
			"TranslatedBy",
			"IsApproved",
			"CreateAt",
			"UpdateAt",
		).
		From(TranslationRecordTableName)
}

// GetTranslationRecord fetches the record for one (entity, locale) pair, or
// nil when none exists.
func (sqlStore *SQLStore) GetTranslationRecord(variant model.Variant, entityID, locale string) (*model.TranslationRecord, error) {
	record := new(model.TranslationRecord)
	err := sqlStore.getBuilder(sqlStore.db, record,
		translationRecordSelect.
			Where("Variant = ?", variant).
			Where("EntityID = ?", entityID).
			Where("Locale = ?", locale),
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get translation record")
	}

	return record, nil
}

// GetTranslationRecordsForEntity fetches every locale's record for an
// entity, the unit the revision passes operate over.
func (sqlStore *SQLStore) GetTranslationRecordsForEntity(variant model.Variant, entityID string) ([]*model.TranslationRecord, error) {
	records := []*model.TranslationRecord{}
	err := sqlStore.selectBuilder(sqlStore.db, &records,
		translationRecordSelect.
			Where("Variant = ?", variant).
			Where("EntityID = ?", entityID).
			OrderBy("Locale ASC"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list translation records for entity")
	}

	return records, nil
}

// UpsertTranslationRecord writes a record through the (variant, entity,
// locale) unique key: created when absent, otherwise the translated fields,
// hash, quality level and translator tag are overwritten in place and the
// approval flag drops back to false pending human sign-off.
func (sqlStore *SQLStore) UpsertTranslationRecord(record *model.TranslationRecord) error {
	if record.ID == "" {
		record.ID = model.NewID()
	}
	if record.CreateAt == 0 {
		record.CreateAt = model.Timestamp()
	}
	record.UpdateAt = model.Timestamp()

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Insert(TranslationRecordTableName).
		SetMap(map[string]interface{}{
			"ID":           record.ID,
			"Variant":      record.Variant,
			"EntityID":     record.EntityID,
			"Locale":       record.Locale,
			"Fields":       record.Fields,
			"ContentHash":  record.ContentHash,
			"QualityLevel": record.QualityLevel,
			"TranslatedBy": record.TranslatedBy,
			"IsApproved":   record.IsApproved,
			"CreateAt":     record.CreateAt,
			"UpdateAt":     record.UpdateAt,
		}).
		Suffix(`ON CONFLICT (Variant, EntityID, Locale) DO UPDATE SET
			Fields = EXCLUDED.Fields,
			ContentHash = EXCLUDED.ContentHash,
			QualityLevel = EXCLUDED.QualityLevel,
			TranslatedBy = EXCLUDED.TranslatedBy,
			IsApproved = EXCLUDED.IsApproved,
			UpdateAt = EXCLUDED.UpdateAt`),
	)
	return errors.Wrap(err, "failed to upsert translation record")
}

// CountTranslationRecords counts the records stored for a variant.
func (sqlStore *SQLStore) CountTranslationRecords(variant model.Variant) (int64, error) {
	var count int64
	err := sqlStore.getBuilder(sqlStore.db, &count,
		sq.Select("COUNT(*)").
			From(TranslationRecordTableName).
			Where("Variant = ?", variant),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count translation records")
	}

	return count, nil
}

// TranslationQualityBreakdown returns record counts per quality level for a
// variant.
func (sqlStore *SQLStore) TranslationQualityBreakdown(variant model.Variant) (map[string]int64, error) {
	rows := []struct {
		QualityLevel string
		Count        int64
	}{}
	err := sqlStore.selectBuilder(sqlStore.db, &rows,
		sq.Select("QualityLevel", "COUNT(*) AS Count").
			From(TranslationRecordTableName).
			Where("Variant = ?", variant).
			GroupBy("QualityLevel"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate translation quality levels")
	}

	breakdown := make(map[string]int64, len(rows))
	for _, row := range rows {
		breakdown[row.QualityLevel] = row.Count
	}

	return breakdown, nil
}
