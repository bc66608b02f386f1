package consolidation

import (
	"sort"
	"time"

	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is the consolidated total of one residue type.
type Line struct {
	ResidueTypeID uuid.UUID       `json:"residue_type_id"`
	ResidueName   string          `json:"residue_name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Value         decimal.Decimal `json:"value"`
}

// Preview is the in-memory result shown to the user and persisted verbatim on issuance.
//
// TotalValue is the sum of the collections' own total_value and is the certificate's
// financial total. ResidueValueTotal (sum of line values) is kept for reconciliation only.
type Preview struct {
	EntityID          uuid.UUID       `json:"entity_id"`
	EntityName        string          `json:"entity_name"`
	EntityTaxID       string          `json:"entity_tax_id"`
	CollectionIDs     []uuid.UUID     `json:"collection_ids"`
	PeriodStart       time.Time       `json:"period_start"`
	PeriodEnd         time.Time       `json:"period_end"`
	Lines             []Line          `json:"lines"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	ResidueValueTotal decimal.Decimal `json:"residue_value_total"`
}

// ValueDivergence is TotalValue minus ResidueValueTotal; non-zero when residue rounding differs.
func (p *Preview) ValueDivergence() decimal.Decimal {
	return p.TotalValue.Sub(p.ResidueValueTotal)
}

// Consolidate aggregates the collections by residue type. Collections must come with their
// residue lines (and residue types, for names) loaded; inactive lines are ignored.
func Consolidate(collections []domain.WasteCollection) (*Preview, error) {
	if len(collections) == 0 {
		return nil, ErrEmptySelection
	}
	entityID := collections[0].EntityID
	for _, c := range collections[1:] {
		if c.EntityID != entityID {
			return nil, ErrHeterogeneousSelection
		}
	}

	p := &Preview{
		EntityID:          entityID,
		CollectionIDs:     make([]uuid.UUID, 0, len(collections)),
		PeriodStart:       collections[0].CollectedAt,
		PeriodEnd:         collections[0].CollectedAt,
		TotalQuantity:     decimal.Zero,
		TotalValue:        decimal.Zero,
		ResidueValueTotal: decimal.Zero,
	}
	byType := make(map[uuid.UUID]*Line)

	for _, c := range collections {
		if p.EntityName == "" && c.Entity != nil {
			p.EntityName = c.Entity.Name
			p.EntityTaxID = c.Entity.TaxID
		}
		p.CollectionIDs = append(p.CollectionIDs, c.ID)
		if c.CollectedAt.Before(p.PeriodStart) {
			p.PeriodStart = c.CollectedAt
		}
		if c.CollectedAt.After(p.PeriodEnd) {
			p.PeriodEnd = c.CollectedAt
		}
		p.TotalValue = p.TotalValue.Add(c.TotalValue)

		for _, r := range c.Residues {
			if r.Status != "" && r.Status != domain.StateActive {
				continue
			}
			line, ok := byType[r.ResidueTypeID]
			if !ok {
				line = &Line{ResidueTypeID: r.ResidueTypeID, Unit: "kg", Quantity: decimal.Zero, Value: decimal.Zero}
				byType[r.ResidueTypeID] = line
			}
			if line.ResidueName == "" && r.ResidueType != nil {
				line.ResidueName = r.ResidueType.Name
				if r.ResidueType.Unit != "" {
					line.Unit = r.ResidueType.Unit
				}
			}
			line.Quantity = line.Quantity.Add(r.Quantity)
			line.Value = line.Value.Add(r.Value)
			p.TotalQuantity = p.TotalQuantity.Add(r.Quantity)
			p.ResidueValueTotal = p.ResidueValueTotal.Add(r.Value)
		}
	}

	p.Lines = make([]Line, 0, len(byType))
	for _, l := range byType {
		p.Lines = append(p.Lines, *l)
	}
	sort.Slice(p.Lines, func(i, j int) bool {
		if p.Lines[i].ResidueName != p.Lines[j].ResidueName {
			return p.Lines[i].ResidueName < p.Lines[j].ResidueName
		}
		return p.Lines[i].ResidueTypeID.String() < p.Lines[j].ResidueTypeID.String()
	})
	return p, nil
}
