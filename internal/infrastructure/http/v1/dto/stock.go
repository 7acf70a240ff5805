package dto

import (
	"time"

	"kardex/internal/core/entity"
)

// BalanceResponse mirrors one general balance snapshot row.
type BalanceResponse struct {
	CompanyID      string `json:"companyId"`
	WarehouseID    string `json:"warehouseId"`
	ProductID      string `json:"productId"`
	CounterpartyID string `json:"counterpartyId"`
	Custody        bool   `json:"custody"`

	Quantity string `json:"quantity"`
	Weight   string `json:"weight"`
	UnitCost string `json:"unitCost"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// FromGeneralBalance creates BalanceResponse from entity.GeneralBalance.
func FromGeneralBalance(b entity.GeneralBalance) BalanceResponse {
	return BalanceResponse{
		CompanyID:      b.Key.CompanyID.String(),
		WarehouseID:    b.Key.WarehouseID.String(),
		ProductID:      b.Key.ProductID.String(),
		CounterpartyID: b.Key.CounterpartyID.String(),
		Custody:        b.Key.Custody,
		Quantity:       b.Balance.Quantity.String(),
		Weight:         b.Balance.Weight.String(),
		UnitCost:       b.Balance.UnitCost.String(),
		UpdatedAt:      b.UpdatedAt,
	}
}

// DetailedBalanceResponse mirrors one detailed balance snapshot row.
type DetailedBalanceResponse struct {
	BalanceResponse

	Lot              string     `json:"lot,omitempty"`
	ProductionDate   *time.Time `json:"productionDate,omitempty"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	ReceiptDate      *time.Time `json:"receiptDate,omitempty"`
	ContainerNumber  string     `json:"containerNumber,omitempty"`
	SerialNumber     string     `json:"serialNumber,omitempty"`
	MerchandiseState string     `json:"merchandiseState,omitempty"`
	QualityState     string     `json:"qualityState,omitempty"`
}

// FromDetailedBalance creates DetailedBalanceResponse from entity.DetailedBalance.
func FromDetailedBalance(b entity.DetailedBalance) DetailedBalanceResponse {
	return DetailedBalanceResponse{
		BalanceResponse: BalanceResponse{
			CompanyID:      b.Key.CompanyID.String(),
			WarehouseID:    b.Key.WarehouseID.String(),
			ProductID:      b.Key.ProductID.String(),
			CounterpartyID: b.Key.CounterpartyID.String(),
			Custody:        b.Key.Custody,
			Quantity:       b.Balance.Quantity.String(),
			Weight:         b.Balance.Weight.String(),
			UnitCost:       b.Balance.UnitCost.String(),
			UpdatedAt:      b.UpdatedAt,
		},
		Lot:              b.Key.Tracking.Lot,
		ProductionDate:   b.Key.Tracking.ProductionDate,
		ExpiryDate:       b.Key.Tracking.ExpiryDate,
		ReceiptDate:      b.Key.Tracking.ReceiptDate,
		ContainerNumber:  b.Key.Tracking.ContainerNumber,
		SerialNumber:     b.Key.Tracking.SerialNumber,
		MerchandiseState: b.Key.Tracking.MerchandiseState,
		QualityState:     b.Key.Tracking.QualityState,
	}
}

// LedgerEntryResponse mirrors one ledger entry in replay order.
type LedgerEntryResponse struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	DetailLineID string    `json:"detailLineId"`
	DocumentDate time.Time `json:"documentDate"`
	Direction    string    `json:"direction"`

	QuantityIn  string `json:"quantityIn"`
	QuantityOut string `json:"quantityOut"`
	WeightIn    string `json:"weightIn"`
	WeightOut   string `json:"weightOut"`
	UnitCostIn  string `json:"unitCostIn"`
	UnitCostOut string `json:"unitCostOut"`

	Lot string `json:"lot,omitempty"`
}

// FromLedgerEntry creates LedgerEntryResponse from entity.LedgerEntry.
func FromLedgerEntry(e entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           e.ID.String(),
		DocumentID:   e.DocumentID.String(),
		DetailLineID: e.DetailLineID.String(),
		DocumentDate: e.DocumentDate,
		Direction:    string(e.Direction),
		QuantityIn:   e.QuantityIn.String(),
		QuantityOut:  e.QuantityOut.String(),
		WeightIn:     e.WeightIn.String(),
		WeightOut:    e.WeightOut.String(),
		UnitCostIn:   e.UnitCostIn.String(),
		UnitCostOut:  e.UnitCostOut.String(),
		Lot:          e.Lot,
	}
}
