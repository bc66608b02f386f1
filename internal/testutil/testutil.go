// Package testutil builds in-memory stores and seed data for package tests.
package testutil

import (
	"testing"
	"time"

	"wastecert-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite store with every model migrated.
// A single connection keeps all statements on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.AllModels()...))
	return db
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func SeedEntity(t testing.TB, db *gorm.DB, name, taxID string) domain.GeneratingEntity {
	t.Helper()
	e := domain.GeneratingEntity{Name: name, TaxID: taxID, Status: domain.StateActive}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func SeedPoint(t testing.TB, db *gorm.DB, name string) domain.CollectionPoint {
	t.Helper()
	p := domain.CollectionPoint{Name: name}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SeedResidueType(t testing.TB, db *gorm.DB, name string) domain.ResidueType {
	t.Helper()
	r := domain.ResidueType{Name: name, Unit: "kg"}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// Line describes one residue line of a seeded collection.
type Line struct {
	Type     domain.ResidueType
	Quantity string
	Value    string
	Inactive bool
}

// Collection describes a seeded collection.
type Collection struct {
	Code        string
	Entity      domain.GeneratingEntity
	Point       *domain.CollectionPoint
	CollectedAt time.Time
	TotalValue  string
	Lines       []Line
}

func SeedCollection(t testing.TB, db *gorm.DB, spec Collection) domain.WasteCollection {
	t.Helper()
	c := domain.WasteCollection{
		ID:          uuid.New(),
		Code:        spec.Code,
		CollectedAt: spec.CollectedAt,
		EntityID:    spec.Entity.ID,
		TotalValue:  Dec(spec.TotalValue),
		Status:      domain.StateActive,
	}
	if spec.Point != nil {
		c.PointID = &spec.Point.ID
	}
	require.NoError(t, db.Omit("Residues", "Entity", "Point").Create(&c).Error)
	for _, l := range spec.Lines {
		status := domain.StateActive
		if l.Inactive {
			status = domain.StateInactive
		}
		r := domain.WasteCollectionResidue{
			CollectionID:  c.ID,
			ResidueTypeID: l.Type.ID,
			Quantity:      Dec(l.Quantity),
			Value:         Dec(l.Value),
			Status:        status,
		}
		require.NoError(t, db.Omit("ResidueType").Create(&r).Error)
	}
	return c
}

// Reload fetches the collection as stored, including its binding.
func Reload(t testing.TB, db *gorm.DB, id uuid.UUID) domain.WasteCollection {
	t.Helper()
	var c domain.WasteCollection
	require.NoError(t, db.Where("id = ?", id).First(&c).Error)
	return c
}

// Count returns the number of rows of model matching the optional where clause.
func Count(t testing.TB, db *gorm.DB, model interface{}, where ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// Admin is a requester without entity scope.
func Admin() domain.Requester {
	return domain.Requester{UserID: uuid.NewString(), Role: "admin", Admin: true}
}

// Operator is a requester scoped to one entity.
func Operator(entityID uuid.UUID) domain.Requester {
	id := entityID
	return domain.Requester{UserID: uuid.NewString(), Role: "operator", EntityID: &id}
}
