package core_test

import (
	"testing"

	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCustomerBalance(t *testing.T) {
	tests := []struct {
		name     string
		opening  string
		invoices []core.Exposure
		txns     []core.LedgerTransaction
		want     string
	}{
		{
			name:    "opening balance only",
			opening: "1000",
			want:    "1000",
		},
		{
			name:     "one part-paid invoice",
			opening:  "0",
			invoices: []core.Exposure{{Total: dec("5000"), Paid: dec("2000")}},
			want:     "3000",
		},
		{
			name:     "invoice settled by received transaction",
			opening:  "0",
			invoices: []core.Exposure{{Total: dec("5000"), Paid: dec("2000")}},
			txns:     []core.LedgerTransaction{{Type: core.TxnReceived, Amount: dec("3000")}},
			want:     "0",
		},
		{
			name:    "refund paid out adds to balance",
			opening: "0",
			txns:    []core.LedgerTransaction{{Type: core.TxnPaid, Amount: dec("500")}},
			want:    "500",
		},
		{
			name:    "overpayment goes to credit",
			opening: "0",
			invoices: []core.Exposure{
				{Total: dec("1000"), Paid: dec("0")},
			},
			txns: []core.LedgerTransaction{{Type: core.TxnReceived, Amount: dec("1500")}},
			want: "-500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.CustomerBalance(dec(tt.opening), tt.invoices, tt.txns)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("balance = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVendorBalance(t *testing.T) {
	tests := []struct {
		name      string
		opening   string
		purchases []core.Exposure
		txns      []core.LedgerTransaction
		want      string
	}{
		{
			name:      "purchase settled by payment",
			opening:   "0",
			purchases: []core.Exposure{{Total: dec("2000"), Paid: dec("0")}},
			txns:      []core.LedgerTransaction{{Type: core.TxnPaid, Amount: dec("2000")}},
			want:      "0",
		},
		{
			name:    "vendor refund adds back",
			opening: "0",
			txns:    []core.LedgerTransaction{{Type: core.TxnReceived, Amount: dec("300")}},
			want:    "300",
		},
		{
			name:      "unpaid purchase is payable",
			opening:   "100",
			purchases: []core.Exposure{{Total: dec("2500"), Paid: dec("500")}},
			want:      "2100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.VendorBalance(dec(tt.opening), tt.purchases, tt.txns)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("balance = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBalanceFold_Idempotent(t *testing.T) {
	invoices := []core.Exposure{{Total: dec("750.25"), Paid: dec("100.25")}}
	txns := []core.LedgerTransaction{{Type: core.TxnReceived, Amount: dec("50")}}

	first := core.CustomerBalance(dec("10"), invoices, txns)
	second := core.CustomerBalance(dec("10"), invoices, txns)
	if !first.Equal(second) {
		t.Errorf("fold is not idempotent: %s vs %s", first, second)
	}
}

func TestClassifyBalance(t *testing.T) {
	tests := []struct {
		balance string
		want    core.BalanceStatus
	}{
		{"250.00", core.StatusOutstanding},
		{"-0.01", core.StatusCredit},
		{"0", core.StatusSettled},
		{"0.00", core.StatusSettled},
	}
	for _, tt := range tests {
		if got := core.ClassifyBalance(dec(tt.balance)); got != tt.want {
			t.Errorf("ClassifyBalance(%s) = %s, want %s", tt.balance, got, tt.want)
		}
	}
}

func TestBalanceStatus_Label(t *testing.T) {
	if got := core.StatusOutstanding.Label(core.PartyCustomer); got != "Outstanding" {
		t.Errorf("customer outstanding label = %q", got)
	}
	if got := core.StatusOutstanding.Label(core.PartyVendor); got != "Payable" {
		t.Errorf("vendor outstanding label = %q", got)
	}
	if got := core.StatusCredit.Label(core.PartyVendor); got != "Credit" {
		t.Errorf("vendor credit label = %q", got)
	}
	if got := core.StatusSettled.Label(core.PartyCustomer); got != "Settled" {
		t.Errorf("settled label = %q", got)
	}
}
