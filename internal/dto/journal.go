package dto

import (
	"time"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one row of the "details" array.
type JournalLineRequest struct {
	AkunID int64           `json:"akun_id" binding:"required,gt=0"`
	Debet  decimal.Decimal `json:"debet"`
	Kredit decimal.Decimal `json:"kredit"`
}

// CreateJournalRequest is the body of POST /api/jurnals.
type CreateJournalRequest struct {
	Tanggal    string               `json:"tanggal" binding:"required"`
	NoBukti    *string              `json:"no_bukti" binding:"omitempty,max=64"`
	Sumber     *string              `json:"sumber" binding:"omitempty,max=64"`
	SumberID   *FlexString          `json:"sumber_id"`
	Keterangan *string              `json:"keterangan" binding:"omitempty,max=500"`
	Details    []JournalLineRequest `json:"details" binding:"required,min=2,dive"`
}

// ListJournalsParams are the query parameters for GET /api/jurnals.
type ListJournalsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
	Dari      string  `form:"dari"`
	Sampai    string  `form:"sampai"`
	Sumber    string  `form:"sumber"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	AccountID   int64           `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	EntryID              string                `json:"entryID"`
	Date                 string                `json:"date"`
	SourceDocumentNumber *string               `json:"sourceDocumentNumber,omitempty"`
	SourceKind           string                `json:"sourceKind"`
	SourceID             *string               `json:"sourceID,omitempty"`
	Description          *string               `json:"description,omitempty"`
	Lines                []JournalLineResponse `json:"lines"`
	TotalDebit           decimal.Decimal       `json:"totalDebit"`
	TotalCredit          decimal.Decimal       `json:"totalCredit"`
	CreatedAt            time.Time             `json:"createdAt"`
	CreatedBy            string                `json:"createdBy"`
}

// ListJournalsResponse wraps a page of journals.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// CreateJournalResponse is returned by POST /api/jurnals.
type CreateJournalResponse struct {
	EntryID string `json:"entryID"`
	Date    string `json:"date"`
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse DTO.
func ToJournalResponse(e *domain.JournalEntry) JournalResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	debit, credit := e.Totals()
	return JournalResponse{
		EntryID:              e.EntryID,
		Date:                 e.EntryDate.Format(domain.DateFormat),
		SourceDocumentNumber: e.SourceDocumentNumber,
		SourceKind:           string(e.SourceKind),
		SourceID:             e.SourceID,
		Description:          e.Description,
		Lines:                lines,
		TotalDebit:           debit,
		TotalCredit:          credit,
		CreatedAt:            e.CreatedAt,
		CreatedBy:            e.CreatedBy,
	}
}

// ToJournalResponses converts a slice of domain.JournalEntry to []JournalResponse.
func ToJournalResponses(entries []domain.JournalEntry) []JournalResponse {
	responses := make([]JournalResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalResponse(&entries[i])
	}
	return responses
}
