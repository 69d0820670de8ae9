package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt is issued once per successful payment.
type Receipt struct {
	ReceiptID        uuid.UUID `json:"receipt_id" gorm:"column:receipt_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReceiptPaymentID uuid.UUID `json:"receipt_payment_id" gorm:"column:receipt_payment_id;type:uuid;not null;uniqueIndex"`

	ReceiptNo  string `json:"receipt_no" gorm:"column:receipt_no;type:varchar(64);not null;uniqueIndex"`
	ReceiptURL string `json:"receipt_url" gorm:"column:receipt_url;type:text;not null"`

	ReceiptStudentName string `json:"receipt_student_name" gorm:"column:receipt_student_name;type:varchar(255);not null"`
	ReceiptStudentRegn string `json:"receipt_student_regn" gorm:"column:receipt_student_regn;type:varchar(64);not null"`
	ReceiptAmount      int64  `json:"receipt_amount" gorm:"column:receipt_amount;not null"`
	ReceiptCurrency    string `json:"receipt_currency" gorm:"column:receipt_currency;type:varchar(8);not null;default:'NGN'"`
	ReceiptReference   string `json:"receipt_reference" gorm:"column:receipt_reference;type:varchar(128);not null"`

	ReceiptIssuedAt  time.Time      `json:"receipt_issued_at" gorm:"column:receipt_issued_at;autoCreateTime"`
	ReceiptCreatedAt time.Time      `json:"receipt_created_at" gorm:"column:receipt_created_at;autoCreateTime"`
	ReceiptDeletedAt gorm.DeletedAt `json:"-" gorm:"column:receipt_deleted_at;index"`
}

func (Receipt) TableName() string {
	return "receipts"
}
