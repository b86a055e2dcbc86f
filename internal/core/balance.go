package core

import "github.com/shopspring/decimal"

// Exposure is the unpaid portion of one invoice or purchase:
// (Total - Paid) is added to the party's balance. Missing amounts are zero.
type Exposure struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

// LedgerTransaction is one manual received/paid transaction against a party.
type LedgerTransaction struct {
	Type   TransactionType
	Amount decimal.Decimal
}

// CustomerBalance folds a customer's current balance from the opening balance,
// all invoice exposures, and all manual transactions. Positive means the
// customer owes the store. Money received from the customer subtracts; money
// paid out to the customer (refund, advance) adds. Pure and idempotent over
// its inputs.
func CustomerBalance(opening decimal.Decimal, invoices []Exposure, txns []LedgerTransaction) decimal.Decimal {
	return foldBalance(opening, invoices, txns, TxnReceived)
}

// VendorBalance folds a vendor's current balance. Positive means the store
// owes the vendor. The transaction sign convention is inverted relative to
// CustomerBalance: money paid to the vendor subtracts, money received back
// from the vendor (refund, credit) adds.
func VendorBalance(opening decimal.Decimal, purchases []Exposure, txns []LedgerTransaction) decimal.Decimal {
	return foldBalance(opening, purchases, txns, TxnPaid)
}

// foldBalance accumulates opening + Σ(total-paid) over exposures, then applies
// transactions: settling (money moving in the direction that clears the debt)
// subtracts, the opposite direction adds.
func foldBalance(opening decimal.Decimal, exposures []Exposure, txns []LedgerTransaction, settling TransactionType) decimal.Decimal {
	balance := opening
	for _, e := range exposures {
		balance = balance.Add(e.Total.Sub(e.Paid))
	}
	for _, t := range txns {
		if t.Type == settling {
			balance = balance.Sub(t.Amount)
		} else {
			balance = balance.Add(t.Amount)
		}
	}
	return balance
}

// BalanceStatus is the three-way classification of a balance sign.
type BalanceStatus string

const (
	StatusOutstanding BalanceStatus = "outstanding" // party owes (customer) / store owes (vendor)
	StatusCredit      BalanceStatus = "credit"
	StatusSettled     BalanceStatus = "settled"
)

// ClassifyBalance maps the sign of a balance to its status:
// positive → outstanding, negative → credit, zero → settled.
func ClassifyBalance(b decimal.Decimal) BalanceStatus {
	switch b.Sign() {
	case 1:
		return StatusOutstanding
	case -1:
		return StatusCredit
	default:
		return StatusSettled
	}
}

// Label renders the status for display. Vendor screens call the positive
// case "Payable"; the sign logic is identical in both directions.
func (s BalanceStatus) Label(direction PartyType) string {
	switch s {
	case StatusOutstanding:
		if direction == PartyVendor {
			return "Payable"
		}
		return "Outstanding"
	case StatusCredit:
		return "Credit"
	default:
		return "Settled"
	}
}

// ColorClass maps the status to the stable CSS class the front-end styles by.
func (s BalanceStatus) ColorClass() string {
	switch s {
	case StatusOutstanding:
		return "balance-outstanding"
	case StatusCredit:
		return "balance-credit"
	default:
		return "balance-settled"
	}
}
