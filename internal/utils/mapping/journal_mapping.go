package mapping

import (
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/SscSPs/koperasi_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its header row
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:              d.EntryID,
		EntryDate:            d.EntryDate,
		Sequence:             d.Sequence,
		SourceDocumentNumber: toNullString(d.SourceDocumentNumber),
		SourceKind:           string(d.SourceKind),
		SourceID:             toNullString(d.SourceID),
		Description:          toNullString(d.Description),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a header row and its line rows to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	out := domain.JournalEntry{
		EntryID:              m.EntryID,
		EntryDate:            domain.NormalizeDate(m.EntryDate),
		Sequence:             m.Sequence,
		SourceDocumentNumber: fromNullString(m.SourceDocumentNumber),
		SourceKind:           domain.SourceKind(m.SourceKind),
		SourceID:             fromNullString(m.SourceID),
		Description:          fromNullString(m.Description),
		Lines:                make([]domain.JournalLine, len(lines)),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
	for i, l := range lines {
		out.Lines[i] = ToDomainJournalLine(l)
	}
	return out
}

// ToDomainJournalLine converts a line row to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		AccountID:   m.AccountID,
		AccountCode: m.AccountCode,
		Debit:       m.Debit,
		Credit:      m.Credit,
	}
}
