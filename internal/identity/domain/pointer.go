package domain

import "time"

// PointerRecord is the relational row mapping a DID to its current content
// address and owning user. Exactly one live record exists per DID; ownership
// is determined solely by OwnerUserID.
type PointerRecord struct {
	DID            string
	ContentAddress string
	OwnerUserID    int64
	ExternalLink   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
