package entity

import (
	"testing"
	"time"

	"kardex/internal/core/id"
)

func TestNewGroupKey_OwnedForcesSentinel(t *testing.T) {
	company := id.New()
	warehouse := id.New()
	product := id.New()
	customer := id.New()

	// Owned merchandise ignores whatever counterparty was passed.
	key := NewGroupKey(company, warehouse, product, customer, false)
	if key.CounterpartyID != OwnerCounterparty {
		t.Errorf("owned key counterparty = %s, want sentinel", key.CounterpartyID)
	}

	// Custody keeps the real counterparty.
	key = NewGroupKey(company, warehouse, product, customer, true)
	if key.CounterpartyID != customer {
		t.Errorf("custody key counterparty = %s, want %s", key.CounterpartyID, customer)
	}

	// Custody without a counterparty still resolves to a non-nil value.
	key = NewGroupKey(company, warehouse, product, id.Nil(), true)
	if key.CounterpartyID != OwnerCounterparty {
		t.Errorf("custody key without counterparty = %s, want sentinel", key.CounterpartyID)
	}
}

func TestGroupKeyString_DistinguishesCustody(t *testing.T) {
	company := id.New()
	warehouse := id.New()
	product := id.New()
	customer := id.New()

	owned := NewGroupKey(company, warehouse, product, customer, false)
	custody := NewGroupKey(company, warehouse, product, customer, true)

	if owned.String() == custody.String() {
		t.Error("owned and custody keys must render differently")
	}
}

func TestTrackingCanonicalString_DayPrecision(t *testing.T) {
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)

	a := Tracking{Lot: "L1", ExpiryDate: &morning}
	b := Tracking{Lot: "L1", ExpiryDate: &evening}

	// Tracking dates identify a lot by day, not by timestamp.
	if a.CanonicalString() != b.CanonicalString() {
		t.Errorf("same-day tracking tuples must match: %q vs %q",
			a.CanonicalString(), b.CanonicalString())
	}
}

func TestTrackingIsZero(t *testing.T) {
	if !(Tracking{}).IsZero() {
		t.Error("empty tracking must be zero")
	}
	if (Tracking{Lot: "A"}).IsZero() {
		t.Error("tracking with lot must not be zero")
	}
}
