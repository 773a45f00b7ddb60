package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// Quality levels mark how far through the pipeline a record has travelled.
const (
	QualityDraft    = "draft"
	QualityImproved = "improved"
	QualityVerified = "verified"
)

// FieldMap holds named field values, stored as a JSONB column.
type FieldMap map[string]string

// Value implements driver.Valuer.
func (m FieldMap) Value() (driver.Value, error) {
	if m == nil {
		m = FieldMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *FieldMap) Scan(src interface{}) error {
	if src == nil {
		*m = FieldMap{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("cannot scan %T into FieldMap", src)
	}
	return json.Unmarshal(b, m)
}

// TranslationRecord is the translation memory: one row per (entity, locale).
// Pass 1 creates it; passes 2 and 3 mutate it in place. The pipeline never
// deletes a record.
type TranslationRecord struct {
	ID           string
	Variant      Variant
	EntityID     string
	Locale       string
	Fields       FieldMap
	ContentHash  string
	QualityLevel string
	TranslatedBy string
	// Every machine translation is provisional until a human signs off, so
	// any write through the pipeline resets this to false.
	IsApproved bool
	CreateAt   int64
	UpdateAt   int64
}

// Fresh reports whether the record still matches the given source hash.
// Hash equality is the sole staleness signal; timestamps are never compared.
func (r *TranslationRecord) Fresh(sourceHash string) bool {
	return r.ContentHash == sourceHash
}

// SourceEntity is a read-only view of one storefront content row: its stable
// identifier plus the translatable field values for its variant.
type SourceEntity struct {
	ID     string
	Fields FieldMap
}

// HasContent reports whether any translatable field is non-empty. Entities
// with no content are skipped entirely.
func (e *SourceEntity) HasContent() bool {
	for _, v := range e.Fields {
		if v != "" {
			return true
		}
	}
	return false
}
