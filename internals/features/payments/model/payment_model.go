package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */
/* Mirrors the ENUMs in PostgreSQL: payment_status, payment_gateway */

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
)

type GatewayProvider string

const (
	GatewayPaystack    GatewayProvider = "paystack"
	GatewayFlutterwave GatewayProvider = "flutterwave"
	GatewayGlobalPay   GatewayProvider = "global"
	GatewayMidtrans    GatewayProvider = "midtrans"
)

/* ===================== Fee snapshot ===================== */

// FeeSnapshotItem is one fee captured at initiation time. Amounts are
// whole naira. The snapshot is immutable once the record exists; the
// ledger only ever sums these, never the live fee catalog.
type FeeSnapshotItem struct {
	FeeID       uuid.UUID `json:"fee_id"`
	FeeCategory string    `json:"fee_category"`
	Amount      int64     `json:"amount"`
}

type FeeSnapshot []FeeSnapshotItem

func (s FeeSnapshot) Total() int64 {
	var t int64
	for _, it := range s {
		t += it.Amount
	}
	return t
}

/* ===================== Model ===================== */

type Payment struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_id"`

	// Globally unique gateway transaction reference, safe to expose.
	PaymentTransactionRef string `gorm:"column:payment_transaction_ref;uniqueIndex;not null" json:"payment_transaction_ref"`

	// Set when this record settles the balance of an earlier chain.
	// Always points at the chain root, never at another child.
	PaymentOriginalRef *string `gorm:"column:payment_original_ref;index" json:"payment_original_ref,omitempty"`

	// Fee amounts frozen at initiation (jsonb array of FeeSnapshotItem).
	PaymentFeeSnapshot datatypes.JSON `gorm:"column:payment_fee_snapshot;type:jsonb;not null" json:"payment_fee_snapshot"`

	// Nominal & currency
	PaymentAmountPayable int64  `gorm:"column:payment_amount_payable;not null;check:payment_amount_payable >= 0" json:"payment_amount_payable"`
	PaymentAmountPaid    *int64 `gorm:"column:payment_amount_paid" json:"payment_amount_paid,omitempty"`
	PaymentPercent       int    `gorm:"column:payment_percent;not null" json:"payment_percent"`
	PaymentCurrency      string `gorm:"column:payment_currency;type:varchar(8);not null;default:NGN" json:"payment_currency"`

	PaymentStatus  PaymentStatus   `gorm:"column:payment_status;type:varchar(16);not null;default:'pending'" json:"payment_status"`
	PaymentGateway GatewayProvider `gorm:"column:payment_gateway;type:varchar(16);not null" json:"payment_gateway"`

	// Student identity
	PaymentStudentEmail string  `gorm:"column:payment_student_email;not null" json:"payment_student_email"`
	PaymentStudentName  *string `gorm:"column:payment_student_name" json:"payment_student_name,omitempty"`
	PaymentStudentLevel *string `gorm:"column:payment_student_level;type:varchar(8)" json:"payment_student_level,omitempty"`
	PaymentJambNumber   *string `gorm:"column:payment_jamb_number" json:"payment_jamb_number,omitempty"`
	PaymentMatricNumber *string `gorm:"column:payment_matric_number" json:"payment_matric_number,omitempty"`
	PaymentPhoneNumber  *string `gorm:"column:payment_phone_number" json:"payment_phone_number,omitempty"`
	PaymentAddress      *string `gorm:"column:payment_address" json:"payment_address,omitempty"`

	// Gateway-side data
	PaymentCheckoutURL     *string `gorm:"column:payment_checkout_url" json:"payment_checkout_url,omitempty"`
	PaymentProviderRef     *string `gorm:"column:payment_provider_ref" json:"payment_provider_ref,omitempty"`
	PaymentProviderCode    *string `gorm:"column:payment_provider_code" json:"payment_provider_code,omitempty"`
	PaymentProviderMessage *string `gorm:"column:payment_provider_message" json:"payment_provider_message,omitempty"`

	PaymentVerifiedAt *time.Time `gorm:"column:payment_verified_at" json:"payment_verified_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	UpdatedAt time.Time      `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_deleted_at;index" json:"payment_deleted_at,omitempty"`
}

func (Payment) TableName() string { return "payments" }

/* ===================== Helpers ===================== */

func (p *Payment) IsTerminal() bool {
	return p.PaymentStatus == PaymentStatusSuccessful || p.PaymentStatus == PaymentStatusFailed
}

func (p *Payment) IsSuccessful() bool {
	return p.PaymentStatus == PaymentStatusSuccessful
}

// IsRoot reports whether this record opens a chain (no original ref).
func (p *Payment) IsRoot() bool {
	return p.PaymentOriginalRef == nil || *p.PaymentOriginalRef == ""
}

func (p *Payment) PaidAmount() int64 {
	if p.PaymentAmountPaid == nil {
		return 0
	}
	return *p.PaymentAmountPaid
}

func (p *Payment) Snapshot() (FeeSnapshot, error) {
	var s FeeSnapshot
	if len(p.PaymentFeeSnapshot) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(p.PaymentFeeSnapshot, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Payment) SetSnapshot(s FeeSnapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	p.PaymentFeeSnapshot = datatypes.JSON(b)
	return nil
}
