package domain

import "time"

// PeriodSnapshot is a persisted PeriodReport for a closed period.
type PeriodSnapshot struct {
	Period
	Report     PeriodReport `json:"report"`
	Stale      bool         `json:"stale"`
	Revision   int64        `json:"revision"`
	ComputedAt time.Time    `json:"computedAt"`
}

// IdempotencyRecord maps a client key to the entry it produced.
type IdempotencyRecord struct {
	Scope       string    `json:"scope"`
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint"`
	EntryID     string    `json:"entryID"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IdempotencyScopeShuAwal scopes keys sent to the SHU-awal endpoint.
const IdempotencyScopeShuAwal = "shu-awal"
