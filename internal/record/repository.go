package record

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists payment records. Best-effort: a failed save is logged
// by the caller, never surfaced to the payment flow.
type Repository interface {
	Save(ctx context.Context, rec *PaymentRecord) error
	FindByReference(ctx context.Context, reference string) (*PaymentRecord, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Save(ctx context.Context, rec *PaymentRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *gormRepository) FindByReference(ctx context.Context, reference string) (*PaymentRecord, error) {
	var rec PaymentRecord
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// NoOpRepository is used when no database is configured.
type NoOpRepository struct{}

func (NoOpRepository) Save(ctx context.Context, rec *PaymentRecord) error {
	return nil
}

func (NoOpRepository) FindByReference(ctx context.Context, reference string) (*PaymentRecord, error) {
	return nil, gorm.ErrRecordNotFound
}
