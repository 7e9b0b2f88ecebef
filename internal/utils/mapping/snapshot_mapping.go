package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/models"
)

// ToModelSnapshot serialises a snapshot's report to JSON for storage
func ToModelSnapshot(d domain.PeriodSnapshot) (models.PeriodSnapshot, error) {
	raw, err := json.Marshal(d.Report)
	if err != nil {
		return models.PeriodSnapshot{}, fmt.Errorf("marshal snapshot report: %w", err)
	}
	return models.PeriodSnapshot{
		PeriodType: string(d.Type),
		PeriodKey:  d.Key,
		StartDate:  d.Start,
		EndDate:    d.End,
		Report:     raw,
		Stale:      d.Stale,
		Revision:   d.Revision,
		ComputedAt: d.ComputedAt,
	}, nil
}

// ToDomainSnapshot decodes a stored snapshot row
func ToDomainSnapshot(m models.PeriodSnapshot) (domain.PeriodSnapshot, error) {
	var report domain.PeriodReport
	if len(m.Report) > 0 {
		if err := json.Unmarshal(m.Report, &report); err != nil {
			return domain.PeriodSnapshot{}, fmt.Errorf("unmarshal snapshot report %s/%s: %w", m.PeriodType, m.PeriodKey, err)
		}
	}
	return domain.PeriodSnapshot{
		Period: domain.Period{
			Type:  domain.PeriodType(m.PeriodType),
			Key:   m.PeriodKey,
			Start: domain.NormalizeDate(m.StartDate),
			End:   domain.NormalizeDate(m.EndDate),
		},
		Report:     report,
		Stale:      m.Stale,
		Revision:   m.Revision,
		ComputedAt: m.ComputedAt,
	}, nil
}
