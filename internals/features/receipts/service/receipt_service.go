package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"feespay_backend/internals/configs"
	paymentModel "feespay_backend/internals/features/payments/model"
	receiptModel "feespay_backend/internals/features/receipts/model"
)

var (
	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrPaymentNotPaid    = errors.New("payment has not been settled")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrAlreadyGenerated  = errors.New("receipt already generated for this payment")
)

// ReceiptService issues receipts for settled payments. It also satisfies
// the payment engine's notifier hook so receipts appear without an extra
// round trip from the frontend.
type ReceiptService struct {
	DB *gorm.DB
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{DB: db}
}

// PaymentSucceeded is invoked by the payment engine after a record turns
// successful. Failures are logged, never propagated; the client can still
// request generation explicitly.
func (s *ReceiptService) PaymentSucceeded(ctx context.Context, p *paymentModel.Payment) {
	if _, err := s.GenerateForPayment(ctx, p); err != nil && !errors.Is(err, ErrAlreadyGenerated) {
		log.Printf("[RECEIPT] auto-generate failed ref=%s: %v", p.PaymentTransactionRef, err)
	}
}

// Generate issues a receipt for the payment id, loading the record first.
func (s *ReceiptService) Generate(ctx context.Context, paymentID uuid.UUID) (*receiptModel.Receipt, error) {
	var p paymentModel.Payment
	if err := s.DB.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return s.GenerateForPayment(ctx, &p)
}

// GenerateForPayment is idempotent per payment: a second call returns the
// existing receipt with ErrAlreadyGenerated.
func (s *ReceiptService) GenerateForPayment(ctx context.Context, p *paymentModel.Payment) (*receiptModel.Receipt, error) {
	if !p.IsSuccessful() {
		return nil, ErrPaymentNotPaid
	}

	var existing receiptModel.Receipt
	err := s.DB.WithContext(ctx).
		Where("receipt_payment_id = ?", p.PaymentID).
		First(&existing).Error
	if err == nil {
		return &existing, ErrAlreadyGenerated
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	no := newReceiptNo()
	rec := receiptModel.Receipt{
		ReceiptPaymentID:   p.PaymentID,
		ReceiptNo:          no,
		ReceiptURL:         receiptURL(no),
		ReceiptStudentName: derefOr(p.PaymentStudentName, p.PaymentStudentEmail),
		ReceiptStudentRegn: derefOr(p.PaymentMatricNumber, derefOr(p.PaymentJambNumber, "-")),
		ReceiptAmount:      p.PaidAmount(),
		ReceiptCurrency:    p.PaymentCurrency,
		ReceiptReference:   p.PaymentTransactionRef,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		// unique index on payment id covers concurrent auto + manual calls
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			if e2 := s.DB.WithContext(ctx).
				Where("receipt_payment_id = ?", p.PaymentID).
				First(&existing).Error; e2 == nil {
				return &existing, ErrAlreadyGenerated
			}
		}
		return nil, err
	}
	return &rec, nil
}

// GetByPaymentID fetches the receipt issued for a payment.
func (s *ReceiptService) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*receiptModel.Receipt, error) {
	var rec receiptModel.Receipt
	if err := s.DB.WithContext(ctx).
		Where("receipt_payment_id = ?", paymentID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func newReceiptNo() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("RCPT-%s-%s", time.Now().Format("20060102"), short)
}

func receiptURL(no string) string {
	base := strings.TrimRight(configs.ReceiptBaseURL, "/")
	if base == "" {
		base = "/receipts"
	}
	return base + "/" + no
}

func derefOr(p *string, fallback string) string {
	if p != nil && *p != "" {
		return *p
	}
	return fallback
}
