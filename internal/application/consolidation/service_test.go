package consolidation

import (
	"context"
	"testing"

	"wastecert-backend/internal/application/eligibility"
	"wastecert-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicePreview(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	e1 := testutil.SeedEntity(t, db, "Mercado Bom Preço", "11222333000144")
	e2 := testutil.SeedEntity(t, db, "Hotel Mar Azul", "55666777000188")
	paper := testutil.SeedResidueType(t, db, "Paper")

	c1 := testutil.SeedCollection(t, db, testutil.Collection{Code: "C1", Entity: e1, CollectedAt: testutil.Day(2026, 1, 3), TotalValue: "50.00",
		Lines: []testutil.Line{{Type: paper, Quantity: "100", Value: "50.00"}}})
	c2 := testutil.SeedCollection(t, db, testutil.Collection{Code: "C2", Entity: e1, CollectedAt: testutil.Day(2026, 1, 9), TotalValue: "25.00",
		Lines: []testutil.Line{{Type: paper, Quantity: "50", Value: "25.00"}}})
	c3 := testutil.SeedCollection(t, db, testutil.Collection{Code: "C3", Entity: e2, CollectedAt: testutil.Day(2026, 1, 9), TotalValue: "1.00",
		Lines: []testutil.Line{{Type: paper, Quantity: "1", Value: "1.00"}}})

	svc := &Service{DB: db}

	t.Run("success", func(t *testing.T) {
		p, err := svc.Preview(ctx, testutil.Operator(e1.ID), []uuid.UUID{c1.ID, c2.ID, c1.ID})
		require.NoError(t, err)
		assert.Equal(t, "Mercado Bom Preço", p.EntityName)
		assert.True(t, p.TotalQuantity.Equal(testutil.Dec("150")))
		assert.True(t, p.TotalValue.Equal(testutil.Dec("75")))
		assert.Len(t, p.CollectionIDs, 2)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Preview(ctx, testutil.Admin(), nil)
		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Preview(ctx, testutil.Admin(), []uuid.UUID{c1.ID, uuid.New()})
		assert.ErrorIs(t, err, ErrUnknownCollection)
	})

	t.Run("heterogeneous", func(t *testing.T) {
		_, err := svc.Preview(ctx, testutil.Admin(), []uuid.UUID{c1.ID, c3.ID})
		assert.ErrorIs(t, err, ErrHeterogeneousSelection)
	})

	t.Run("out of scope", func(t *testing.T) {
		_, err := svc.Preview(ctx, testutil.Operator(e2.ID), []uuid.UUID{c1.ID})
		assert.ErrorIs(t, err, eligibility.ErrOutOfScope)
	})
}
