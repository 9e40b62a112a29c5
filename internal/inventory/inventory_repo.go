package inventory

import (
	"context"
	"database/sql"
	"errors"

	inventoryerrors "cerven-ot/internal/inventory/errors"
	"cerven-ot/internal/shared/dbtx"
	"cerven-ot/internal/tenant"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const storeCodeIndex = "uq_stores_company_code"

//go:generate mockgen -source=inventory_repo.go -destination=mock/inventory_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateStore(ctx context.Context, s *Store) error
	ListStores(ctx context.Context, companyID string) ([]Store, error)
	StoreExists(ctx context.Context, companyID, storeID string) (bool, error)
	StoreIDsByCode(ctx context.Context, companyID string, codes []string) (map[string]uuid.UUID, error)
	ListItems(ctx context.Context, companyID string, filter ItemFilter) ([]Item, error)
	// UpsertItems inserts or overwrites rows keyed by (company_id, store_id, sku).
	UpsertItems(ctx context.Context, items []Item) error
}

type ItemFilter struct {
	StoreID  string
	Category string
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) CreateStore(ctx context.Context, s *Store) error {
	return mapRepositoryError(r.conn(ctx).Create(s).Error)
}

func (r *repository) ListStores(ctx context.Context, companyID string) ([]Store, error) {
	var rows []Store
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) StoreExists(ctx context.Context, companyID, storeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Store{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", storeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) StoreIDsByCode(ctx context.Context, companyID string, codes []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	var rows []Store
	err := r.conn(ctx).
		Select("id", "code").
		Scopes(tenant.Scope(companyID)).
		Where("code IN ?", codes).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.Code] = s.ID
	}
	return out, nil
}

func (r *repository) ListItems(ctx context.Context, companyID string, filter ItemFilter) ([]Item, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Store")
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var rows []Item
	err := q.Order("store_id, sku").Find(&rows).Error
	return rows, err
}

func (r *repository) UpsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.conn(ctx).
		Omit("Store").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "store_id"}, {Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "quantity", "serial_number", "updated_at"}),
		}).
		Create(&items).Error
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventoryerrors.ErrStoreNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == storeCodeIndex {
		return inventoryerrors.ErrStoreCodeTaken
	}
	return err
}
