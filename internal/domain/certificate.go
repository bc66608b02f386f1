package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate consolidates a homogeneous set of collections. Code is the public
// validator code; it is written once at insert and never updated.
type Certificate struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code              string               `gorm:"column:code;type:varchar(48);not null;uniqueIndex" json:"code"`
	PeriodStart       time.Time            `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd         time.Time            `gorm:"column:period_end;not null" json:"period_end"`
	TotalQuantity     decimal.Decimal      `gorm:"column:total_quantity;type:decimal(18,3);not null" json:"total_quantity"`
	TotalValue        decimal.Decimal      `gorm:"column:total_value;type:decimal(18,2);not null" json:"total_value"`
	ResidueValueTotal decimal.Decimal      `gorm:"column:residue_value_total;type:decimal(18,2);not null" json:"residue_value_total"`
	EntityID          uuid.UUID            `gorm:"column:entity_id;type:uuid;not null;index" json:"entity_id"`
	EntityName        string               `gorm:"column:entity_name;not null" json:"entity_name"`
	EntityTaxID       string               `gorm:"column:entity_tax_id;type:varchar(20);not null" json:"entity_tax_id"`
	CollectionCount   int                  `gorm:"column:collection_count;not null" json:"collection_count"`
	CreatedBy         string               `gorm:"column:created_by;not null" json:"created_by"`
	State             LifecycleState       `gorm:"column:state;type:varchar(20);not null;default:'active';index" json:"state"`
	RevokedAt         *time.Time           `gorm:"column:revoked_at" json:"revoked_at"`
	RevokedBy         *string              `gorm:"column:revoked_by" json:"revoked_by"`
	RevokeReason      *string              `gorm:"column:revoke_reason" json:"revoke_reason"`
	Residues          []CertificateResidue `gorm:"foreignKey:CertificateID" json:"residues,omitempty"`
	Collections       []WasteCollection    `gorm:"foreignKey:CertificateID" json:"collections,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.State == "" {
		c.State = StateActive
	}
	return nil
}

// CertificateResidue is one consolidated residue type of a certificate. ResidueName is a
// snapshot taken at issuance so later renames of the residue type do not alter issued certificates.
type CertificateResidue struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CertificateID uuid.UUID       `gorm:"column:certificate_id;type:uuid;not null;index" json:"certificate_id"`
	ResidueTypeID uuid.UUID       `gorm:"column:residue_type_id;type:uuid;not null" json:"residue_type_id"`
	ResidueName   string          `gorm:"column:residue_name;not null" json:"residue_name"`
	Unit          string          `gorm:"column:unit;type:varchar(10);not null;default:'kg'" json:"unit"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(18,3);not null" json:"quantity"`
	Value         decimal.Decimal `gorm:"column:value;type:decimal(18,2);not null" json:"value"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (CertificateResidue) TableName() string {
	return "certificate_residues"
}

func (r *CertificateResidue) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Certificate log actions.
const (
	LogActionIssued           = "ISSUED"
	LogActionRevoked          = "REVOKED"
	LogActionIntegrityFailure = "INTEGRITY_FAILURE"
)

// CertificateLog is an append-only audit entry.
type CertificateLog struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CertificateID uuid.UUID      `gorm:"column:certificate_id;type:uuid;not null;index" json:"certificate_id"`
	Action        string         `gorm:"column:action;type:varchar(30);not null" json:"action"`
	Actor         string         `gorm:"column:actor;not null" json:"actor"`
	Note          string         `gorm:"column:note;not null;default:''" json:"note"`
	Details       datatypes.JSON `gorm:"column:details;type:jsonb" json:"details"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (CertificateLog) TableName() string {
	return "certificate_logs"
}

func (l *CertificateLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
