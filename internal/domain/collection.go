package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WasteCollection is a recorded pickup. CertificateID is the binding reference:
// nil while the collection is eligible, set while a certificate certifies it.
type WasteCollection struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code          string                   `gorm:"column:code;type:varchar(40);not null;uniqueIndex" json:"code"`
	CollectedAt   time.Time                `gorm:"column:collected_at;not null;index" json:"collected_at"`
	EntityID      uuid.UUID                `gorm:"column:entity_id;type:uuid;not null;index" json:"entity_id"`
	PointID       *uuid.UUID               `gorm:"column:point_id;type:uuid" json:"point_id"`
	TotalValue    decimal.Decimal          `gorm:"column:total_value;type:decimal(18,2);not null" json:"total_value"`
	Status        LifecycleState           `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CertificateID *uuid.UUID               `gorm:"column:certificate_id;type:uuid;index" json:"certificate_id"`
	Entity        *GeneratingEntity        `gorm:"foreignKey:EntityID" json:"entity,omitempty"`
	Point         *CollectionPoint         `gorm:"foreignKey:PointID" json:"point,omitempty"`
	Residues      []WasteCollectionResidue `gorm:"foreignKey:CollectionID" json:"residues,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt           `gorm:"index" json:"-"`
}

func (WasteCollection) TableName() string {
	return "waste_collections"
}

func (w *WasteCollection) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = StateActive
	}
	return nil
}

// Bound reports whether a certificate currently certifies the collection.
func (w WasteCollection) Bound() bool {
	return w.CertificateID != nil && *w.CertificateID != uuid.Nil
}

// WasteCollectionResidue is one residue line of a collection.
type WasteCollectionResidue struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CollectionID  uuid.UUID       `gorm:"column:collection_id;type:uuid;not null;index" json:"collection_id"`
	ResidueTypeID uuid.UUID       `gorm:"column:residue_type_id;type:uuid;not null;index" json:"residue_type_id"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(18,3);not null" json:"quantity"`
	Value         decimal.Decimal `gorm:"column:value;type:decimal(18,2);not null" json:"value"`
	Status        LifecycleState  `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	ResidueType   *ResidueType    `gorm:"foreignKey:ResidueTypeID" json:"residue_type,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (WasteCollectionResidue) TableName() string {
	return "waste_collection_residues"
}

func (r *WasteCollectionResidue) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StateActive
	}
	return nil
}
