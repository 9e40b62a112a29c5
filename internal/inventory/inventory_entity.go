package inventory

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_stores_company_code"`
	Code      string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_stores_company_code"`
	Name      string    `gorm:"type:varchar(150);not null"`
	Address   string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Store) TableName() string {
	return "stores"
}

type Item struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_inventory_items_sku"`
	StoreID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_inventory_items_sku"`
	SKU          string    `gorm:"column:sku;type:varchar(60);not null;uniqueIndex:uq_inventory_items_sku"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Category     string    `gorm:"type:varchar(60)"`
	Quantity     int       `gorm:"not null;default:0"`
	SerialNumber *string   `gorm:"type:varchar(100)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}

func (Item) TableName() string {
	return "inventory_items"
}
