package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"feespay_backend/internals/features/payments/model"
)

// ErrNotFound is the store-level miss; services translate it into the
// NotFound taxonomy before it reaches a caller.
var ErrNotFound = errors.New("payment record not found")

// ListFilter narrows the admin payment listing.
type ListFilter struct {
	Status  *model.PaymentStatus
	Gateway *model.GatewayProvider
	Email   *string
	Offset  int
	Limit   int
}

// Store is the only shared mutable resource in the engine. It is an
// injected dependency so the core carries no global state.
type Store interface {
	Create(ctx context.Context, p *model.Payment) error
	Update(ctx context.Context, p *model.Payment) error
	GetByReference(ctx context.Context, reference string) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// ListChain returns the root record plus every child whose original
	// ref points at it, oldest first.
	ListChain(ctx context.Context, rootReference string) ([]model.Payment, error)

	List(ctx context.Context, f ListFilter) ([]model.Payment, int64, error)

	AppendEvent(ctx context.Context, ev *model.GatewayEvent) error
}

/* =========================================================
   GORM implementation
========================================================= */

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, p *model.Payment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) Update(ctx context.Context, p *model.Payment) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *gormStore) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var p model.Payment
	err := s.db.WithContext(ctx).
		First(&p, "payment_transaction_ref = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := s.db.WithContext(ctx).
		First(&p, "payment_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) ListChain(ctx context.Context, rootReference string) ([]model.Payment, error) {
	var out []model.Payment
	err := s.db.WithContext(ctx).
		Where("payment_transaction_ref = ? OR payment_original_ref = ?", rootReference, rootReference).
		Order("payment_created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) List(ctx context.Context, f ListFilter) ([]model.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Payment{})
	if f.Status != nil {
		q = q.Where("payment_status = ?", *f.Status)
	}
	if f.Gateway != nil {
		q = q.Where("payment_gateway = ?", *f.Gateway)
	}
	if f.Email != nil {
		q = q.Where("payment_student_email = ?", *f.Email)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.Payment
	err := q.Order("payment_created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&out).Error
	return out, total, err
}

func (s *gormStore) AppendEvent(ctx context.Context, ev *model.GatewayEvent) error {
	return s.db.WithContext(ctx).Create(ev).Error
}
