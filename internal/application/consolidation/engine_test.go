package consolidation

import (
	"testing"
	"time"

	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func collection(entity *domain.GeneratingEntity, at time.Time, total string, lines ...domain.WasteCollectionResidue) domain.WasteCollection {
	return domain.WasteCollection{
		ID:          uuid.New(),
		Code:        "COL-" + uuid.NewString()[:6],
		CollectedAt: at,
		EntityID:    entity.ID,
		Entity:      entity,
		TotalValue:  dec(total),
		Status:      domain.StateActive,
		Residues:    lines,
	}
}

func line(rt *domain.ResidueType, qty, value string) domain.WasteCollectionResidue {
	return domain.WasteCollectionResidue{
		ResidueTypeID: rt.ID,
		ResidueType:   rt,
		Quantity:      dec(qty),
		Value:         dec(value),
		Status:        domain.StateActive,
	}
}

func TestConsolidate_Empty(t *testing.T) {
	_, err := Consolidate(nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.True(t, IsValidation(err))
}

func TestConsolidate_Heterogeneous(t *testing.T) {
	e1 := &domain.GeneratingEntity{ID: uuid.New(), Name: "E1"}
	e2 := &domain.GeneratingEntity{ID: uuid.New(), Name: "E2"}
	paper := &domain.ResidueType{ID: uuid.New(), Name: "Paper"}
	_, err := Consolidate([]domain.WasteCollection{
		collection(e1, time.Now(), "1", line(paper, "1", "1")),
		collection(e2, time.Now(), "1", line(paper, "1", "1")),
	})
	assert.ErrorIs(t, err, ErrHeterogeneousSelection)
}

func TestConsolidate_SamePaperTwice(t *testing.T) {
	e1 := &domain.GeneratingEntity{ID: uuid.New(), Name: "Padaria Central", TaxID: "12345678000199"}
	paper := &domain.ResidueType{ID: uuid.New(), Name: "Paper", Unit: "kg"}
	d1 := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	p, err := Consolidate([]domain.WasteCollection{
		collection(e1, d1, "50.00", line(paper, "100", "50.00")),
		collection(e1, d2, "25.00", line(paper, "50", "25.00")),
	})
	require.NoError(t, err)
	assert.Equal(t, e1.ID, p.EntityID)
	assert.Equal(t, "Padaria Central", p.EntityName)
	assert.Equal(t, "12345678000199", p.EntityTaxID)
	assert.True(t, p.PeriodStart.Equal(d2))
	assert.True(t, p.PeriodEnd.Equal(d1))
	require.Len(t, p.Lines, 1)
	assert.Equal(t, "Paper", p.Lines[0].ResidueName)
	assert.True(t, p.Lines[0].Quantity.Equal(dec("150")))
	assert.True(t, p.Lines[0].Value.Equal(dec("75")))
	assert.True(t, p.TotalQuantity.Equal(dec("150")))
	assert.True(t, p.TotalValue.Equal(dec("75")))
	assert.Len(t, p.CollectionIDs, 2)
}

func TestConsolidate_TotalValueComesFromCollections(t *testing.T) {
	e1 := &domain.GeneratingEntity{ID: uuid.New(), Name: "E1"}
	glass := &domain.ResidueType{ID: uuid.New(), Name: "Glass"}
	metal := &domain.ResidueType{ID: uuid.New(), Name: "Metal"}

	p, err := Consolidate([]domain.WasteCollection{
		collection(e1, time.Now(), "10.01", line(glass, "3.333", "3.33"), line(metal, "3.333", "3.33"), line(glass, "3.334", "3.34")),
	})
	require.NoError(t, err)
	assert.True(t, p.TotalValue.Equal(dec("10.01")))
	assert.True(t, p.ResidueValueTotal.Equal(dec("10.00")))
	assert.True(t, p.ValueDivergence().Equal(dec("0.01")))
	assert.True(t, p.TotalQuantity.Equal(dec("10")))

	require.Len(t, p.Lines, 2)
	assert.Equal(t, "Glass", p.Lines[0].ResidueName)
	assert.True(t, p.Lines[0].Quantity.Equal(dec("6.667")))
	assert.Equal(t, "Metal", p.Lines[1].ResidueName)
}

func TestConsolidate_SkipsInactiveLines(t *testing.T) {
	e1 := &domain.GeneratingEntity{ID: uuid.New(), Name: "E1"}
	paper := &domain.ResidueType{ID: uuid.New(), Name: "Paper"}
	dropped := line(paper, "999", "999")
	dropped.Status = domain.StateInactive

	p, err := Consolidate([]domain.WasteCollection{
		collection(e1, time.Now(), "5", line(paper, "10", "5"), dropped),
	})
	require.NoError(t, err)
	assert.True(t, p.TotalQuantity.Equal(dec("10")))
}

func TestConsolidate_QuantityInvariant(t *testing.T) {
	e1 := &domain.GeneratingEntity{ID: uuid.New(), Name: "E1"}
	types := []*domain.ResidueType{
		{ID: uuid.New(), Name: "Paper"},
		{ID: uuid.New(), Name: "Plastic"},
		{ID: uuid.New(), Name: "Organic"},
	}
	var cols []domain.WasteCollection
	want := decimal.Zero
	for i := 0; i < 12; i++ {
		qty := decimal.NewFromInt(int64(i + 1)).Div(decimal.NewFromInt(4))
		want = want.Add(qty)
		cols = append(cols, collection(e1, time.Now(), "1", line(types[i%3], qty.String(), "1")))
	}
	p, err := Consolidate(cols)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range p.Lines {
		sum = sum.Add(l.Quantity)
	}
	assert.True(t, sum.Equal(want))
	assert.True(t, p.TotalQuantity.Equal(want))
}

func TestDedupeIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, DedupeIDs([]uuid.UUID{a, b, a, b, a}))
}
