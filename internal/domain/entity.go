package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeneratingEntity is the organization or person that produced the collected waste.
// Rows are maintained by the entity registry; this service only reads them.
type GeneratingEntity struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	TaxID     string         `gorm:"column:tax_id;type:varchar(20);not null;index" json:"tax_id"`
	Status    LifecycleState `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GeneratingEntity) TableName() string {
	return "generating_entities"
}

func (e *GeneratingEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// CollectionPoint is where a pickup happened.
type CollectionPoint struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Address   *string        `gorm:"column:address" json:"address"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CollectionPoint) TableName() string {
	return "collection_points"
}

func (p *CollectionPoint) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ResidueType is a waste category such as paper or glass.
type ResidueType struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Unit      string    `gorm:"column:unit;type:varchar(10);not null;default:'kg'" json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ResidueType) TableName() string {
	return "residue_types"
}

func (r *ResidueType) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
