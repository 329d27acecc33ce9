// Package repositories implements the gorm-backed persistence surfaces the
// operation core depends on.
package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// GormTxRunner runs operation bodies inside one database transaction.
type GormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner creates a runner over the write database.
func NewGormTxRunner(db *gorm.DB) *GormTxRunner {
	return &GormTxRunner{db: db}
}

// InTx runs fn inside a transaction; any error rolls back everything fn did.
func (r *GormTxRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// SnapshotRepository reads and writes aggregate snapshot rows. Every lookup
// is tenant-scoped; a row belonging to another tenant reports as not found.
type SnapshotRepository struct{}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

// Find loads one snapshot by id within the tenant.
func (r *SnapshotRepository) Find(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error {
	err := tx.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.NotFoundError{Kind: out.Kind(), ID: id}
	}
	if err != nil {
		return errors.Wrapf(err, "failed to load %s %s", out.Kind(), id)
	}
	return nil
}

// FindForUpdate loads one snapshot with a row lock, serializing concurrent
// guarded operations on the same aggregate.
func (r *SnapshotRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error {
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.NotFoundError{Kind: out.Kind(), ID: id}
	}
	if err != nil {
		return errors.Wrapf(err, "failed to lock %s %s", out.Kind(), id)
	}
	return nil
}

// Create inserts a new snapshot row.
func (r *SnapshotRepository) Create(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error {
	if err := tx.WithContext(ctx).Create(snap).Error; err != nil {
		return errors.Wrapf(err, "failed to create %s %s", snap.Kind(), snap.GetID())
	}
	return nil
}

// Save persists an updated snapshot row.
func (r *SnapshotRepository) Save(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error {
	if err := tx.WithContext(ctx).Save(snap).Error; err != nil {
		return errors.Wrapf(err, "failed to save %s %s", snap.Kind(), snap.GetID())
	}
	return nil
}
