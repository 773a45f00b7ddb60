package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/model"
)

// Source entity tables belong to the storefront; the pipeline only reads
// them. Column lists come from the variant descriptor, never from caller
// strings.

// GetSourceEntities reads every source row for a variant.
func (sqlStore *SQLStore) GetSourceEntities(variant model.Variant) ([]*model.SourceEntity, error) {
	desc, err := model.Descriptor(variant)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.
		Select(entityColumns(desc)...).
		From(desc.SourceTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sql")
	}

	rows, err := sqlStore.db.Query(sqlStore.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s source rows", desc.SourceTable)
	}
	defer rows.Close()

	entities := []*model.SourceEntity{}
	for rows.Next() {
		entity, err := scanSourceEntity(rows, desc.Fields)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, errors.Wrap(rows.Err(), "failed while iterating source rows")
}

// GetSourceEntity reads one source row by id, or nil when absent.
func (sqlStore *SQLStore) GetSourceEntity(variant model.Variant, id string) (*model.SourceEntity, error) {
	desc, err := model.Descriptor(variant)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.
		Select(entityColumns(desc)...).
		From(desc.SourceTable).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sql")
	}

	rows, err := sqlStore.db.Query(sqlStore.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s source row", desc.SourceTable)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanSourceEntity(rows, desc.Fields)
}

// CountSourceEntities counts the source rows for a variant.
func (sqlStore *SQLStore) CountSourceEntities(variant model.Variant) (int64, error) {
	desc, err := model.Descriptor(variant)
	if err != nil {
		return 0, err
	}

	var count int64
	err = sqlStore.getBuilder(sqlStore.db, &count,
		sq.Select("COUNT(*)").From(desc.SourceTable))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count %s source rows", desc.SourceTable)
	}

	return count, nil
}

func entityColumns(desc *model.VariantDescriptor) []string {
	columns := make([]string, 0, len(desc.Fields)+1)
	columns = append(columns, "id")
	columns = append(columns, desc.Fields...)
	return columns
}

func scanSourceEntity(rows *sql.Rows, fields []string) (*model.SourceEntity, error) {
	var id string
	values := make([]sql.NullString, len(fields))
	dest := make([]interface{}, 0, len(fields)+1)
	dest = append(dest, &id)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, errors.Wrap(err, "failed to scan source row")
	}

	entity := &model.SourceEntity{ID: id, Fields: model.FieldMap{}}
	for i, name := range fields {
		if values[i].Valid {
			entity.Fields[name] = values[i].String
		}
	}

	return entity, nil
}
