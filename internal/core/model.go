package core

import "time"

// PartyType distinguishes the two ledger directions a Party can have.
// Customers owe the store; the store owes vendors.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartyVendor   PartyType = "vendor"
)

// TransactionType classifies a manual ledger transaction.
// "received" is money coming into the store, "paid" is money going out,
// regardless of which party direction it settles against.
type TransactionType string

const (
	TxnReceived TransactionType = "received"
	TxnPaid     TransactionType = "paid"
)

// EyeSelection says which eye(s) a power selection covers.
type EyeSelection string

const (
	EyeBoth  EyeSelection = "both"
	EyeLeft  EyeSelection = "left"
	EyeRight EyeSelection = "right"
)

// Store is the tenant. Every master and transactional record is scoped to one store.
type Store struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultAxis applies when a lens record carries no axis of its own.
const DefaultAxis = 90
