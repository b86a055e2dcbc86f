package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Party is a customer or vendor master record, scoped to a store. Both
// directions share one shape; Type decides the ledger sign convention.
type Party struct {
	ID             int             `json:"id"`
	StoreID        int             `json:"store_id"`
	Type           PartyType       `json:"type"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Phone          *string         `json:"phone,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Address        *string         `json:"address,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PartyInput holds the fields required to create a new party.
type PartyInput struct {
	Code           string
	Name           string
	Phone          string
	Email          string
	Address        string
	OpeningBalance decimal.Decimal
}

// PartyService provides customer and vendor master data operations.
type PartyService interface {
	// CreateParty creates a new customer or vendor for the given store.
	CreateParty(ctx context.Context, storeID int, partyType PartyType, input PartyInput) (*Party, error)

	// GetParties returns all active parties of one direction for a store, ordered by code.
	GetParties(ctx context.Context, storeID int, partyType PartyType) ([]Party, error)

	// GetPartyByID returns a party by primary key, scoped to the store.
	GetPartyByID(ctx context.Context, storeID, partyID int) (*Party, error)
}
