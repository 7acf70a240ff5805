package entity

import (
	"strings"
	"time"
)

// Tracking is the multi-dimensional tracking tuple carried by detail lines
// and ledger entries. Zero values mean "not tracked" for that dimension.
type Tracking struct {
	Lot             string     `db:"lot" json:"lot,omitempty"`
	ProductionDate  *time.Time `db:"production_date" json:"productionDate,omitempty"`
	ExpiryDate      *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	ReceiptDate     *time.Time `db:"receipt_date" json:"receiptDate,omitempty"`
	ContainerNumber string     `db:"container_number" json:"containerNumber,omitempty"`
	SerialNumber    string     `db:"serial_number" json:"serialNumber,omitempty"`
	MerchandiseState string    `db:"merchandise_state" json:"merchandiseState,omitempty"`
	QualityState    string     `db:"quality_state" json:"qualityState,omitempty"`
}

// IsZero reports whether no tracking dimension is set.
func (t Tracking) IsZero() bool {
	return t.Lot == "" &&
		t.ProductionDate == nil &&
		t.ExpiryDate == nil &&
		t.ReceiptDate == nil &&
		t.ContainerNumber == "" &&
		t.SerialNumber == "" &&
		t.MerchandiseState == "" &&
		t.QualityState == ""
}

// CanonicalString renders the tuple as a stable key fragment.
// Used for grouping and for lock key derivation.
func (t Tracking) CanonicalString() string {
	var b strings.Builder
	b.WriteString(t.Lot)
	b.WriteByte('|')
	b.WriteString(formatDay(t.ProductionDate))
	b.WriteByte('|')
	b.WriteString(formatDay(t.ExpiryDate))
	b.WriteByte('|')
	b.WriteString(formatDay(t.ReceiptDate))
	b.WriteByte('|')
	b.WriteString(t.ContainerNumber)
	b.WriteByte('|')
	b.WriteString(t.SerialNumber)
	b.WriteByte('|')
	b.WriteString(t.MerchandiseState)
	b.WriteByte('|')
	b.WriteString(t.QualityState)
	return b.String()
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// CompareDatePtr orders two optional dates: nil sorts first, then ascending.
func CompareDatePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}
