package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"feespay_backend/internals/features/catalog/model"
	paymentsvc "feespay_backend/internals/features/payments/service"
)

// FeeLookup satisfies the payment engine's read-only fee catalog
// dependency. The engine snapshots whatever this returns; later catalog
// edits never reach an initiated transaction.
type FeeLookup struct {
	DB *gorm.DB
}

func NewFeeLookup(db *gorm.DB) *FeeLookup {
	return &FeeLookup{DB: db}
}

func (l *FeeLookup) FeesByIDs(ctx context.Context, ids []uuid.UUID) ([]paymentsvc.FeeInfo, error) {
	var fees []model.Fee
	if err := l.DB.WithContext(ctx).
		Where("fee_id IN ?", ids).
		Find(&fees).Error; err != nil {
		return nil, err
	}

	out := make([]paymentsvc.FeeInfo, 0, len(fees))
	for i := range fees {
		f := &fees[i]
		out = append(out, paymentsvc.FeeInfo{
			FeeID:    f.FeeID,
			Category: f.FeeCategory,
			Amount:   f.FeeAmount,
			Levels:   f.Levels(),
		})
	}
	return out, nil
}
