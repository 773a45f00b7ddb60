package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/biocycle/translation-pipeline/internal/model"
)

// Status assembles the operator-facing report: per-variant coverage against
// the expected (entities x locales) record count, quality level breakdowns,
// and the job queue grouped by (pass, status).
func (p *Pipeline) Status(ctx context.Context) (*model.StatusReport, error) {
	report := &model.StatusReport{}
	localeCount := int64(len(model.SupportedLocales()))

	for _, variant := range model.AllVariants() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entities, err := p.store.CountSourceEntities(variant)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count %s entities", variant)
		}
		records, err := p.store.CountTranslationRecords(variant)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count %s translation records", variant)
		}
		quality, err := p.store.TranslationQualityBreakdown(variant)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to aggregate %s quality levels", variant)
		}

		report.Variants = append(report.Variants, &model.VariantCoverage{
			Variant:  variant,
			Entities: entities,
			Records:  records,
			Expected: entities * localeCount,
			Quality:  quality,
		})
	}

	jobs, err := p.store.TranslationJobSummary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize the job queue")
	}
	report.Jobs = jobs

	return report, nil
}
