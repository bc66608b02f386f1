package certificates

import (
	"context"
	"errors"
	"testing"
	"time"

	"wastecert-backend/internal/application/codegen"
	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)

type fixture struct {
	db           *gorm.DB
	store        *GormStore
	e1, e2       domain.GeneratingEntity
	paper, glass domain.ResidueType
	c1, c2, c3   domain.WasteCollection
}

// newFixture seeds C1 (100 kg paper, 50.00) and C2 (50 kg paper, 25.00) for E1, and C3 for E2.
func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	f := fixture{db: db, store: &GormStore{DB: db}}
	f.e1 = testutil.SeedEntity(t, db, "Padaria Central", "12345678000199")
	f.e2 = testutil.SeedEntity(t, db, "Hotel Mar Azul", "98765432000111")
	f.paper = testutil.SeedResidueType(t, db, "Paper")
	f.glass = testutil.SeedResidueType(t, db, "Glass")
	f.c1 = testutil.SeedCollection(t, db, testutil.Collection{
		Code: "COL-001", Entity: f.e1, CollectedAt: testutil.Day(2026, 3, 2), TotalValue: "50.00",
		Lines: []testutil.Line{{Type: f.paper, Quantity: "100", Value: "50.00"}},
	})
	f.c2 = testutil.SeedCollection(t, db, testutil.Collection{
		Code: "COL-002", Entity: f.e1, CollectedAt: testutil.Day(2026, 3, 9), TotalValue: "25.00",
		Lines: []testutil.Line{{Type: f.paper, Quantity: "50", Value: "25.00"}},
	})
	f.c3 = testutil.SeedCollection(t, db, testutil.Collection{
		Code: "COL-003", Entity: f.e2, CollectedAt: testutil.Day(2026, 3, 4), TotalValue: "10.00",
		Lines: []testutil.Line{{Type: f.glass, Quantity: "20", Value: "10.00"}},
	})
	return f
}

func (f fixture) issuer(store Store) *Issuer {
	if store == nil {
		store = f.store
	}
	return &Issuer{
		Store:           store,
		Codes:           &codegen.Generator{Now: func() time.Time { return issuedAt }},
		MaxCodeAttempts: DefaultMaxCodeAttempts,
		Now:             func() time.Time { return issuedAt },
	}
}

func (f fixture) revoker(store Store) *Revoker {
	if store == nil {
		store = f.store
	}
	return &Revoker{Store: store, Now: func() time.Time { return issuedAt.Add(time.Hour) }}
}

func (f fixture) issue(t *testing.T, req domain.Requester, ids ...uuid.UUID) *IssueResult {
	t.Helper()
	res, err := f.issuer(nil).Issue(context.Background(), IssueRequest{Requester: req, CollectionIDs: ids})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return res
}

var errInjected = errors.New("injected store failure")

// faultyStore fails selected operations on top of a real store.
type faultyStore struct {
	*GormStore
	failIssuedLog   bool
	failDeleteCert  bool
	failUnbind      bool
	failDeactivate  bool
	beforeBind      func()
	staleFind       bool
	createCertCalls int
	bindCalls       int
}

func (s *faultyStore) FindCertificate(ctx context.Context, id uuid.UUID) (*domain.Certificate, error) {
	cert, err := s.GormStore.FindCertificate(ctx, id)
	if err == nil && s.staleFind {
		cert.State = domain.StateActive
	}
	return cert, err
}

func (s *faultyStore) CreateCertificate(ctx context.Context, cert *domain.Certificate) error {
	s.createCertCalls++
	return s.GormStore.CreateCertificate(ctx, cert)
}

func (s *faultyStore) BindCollections(ctx context.Context, certID uuid.UUID, ids []uuid.UUID) (int64, error) {
	s.bindCalls++
	if s.beforeBind != nil {
		s.beforeBind()
	}
	return s.GormStore.BindCollections(ctx, certID, ids)
}

func (s *faultyStore) UnbindCollections(ctx context.Context, certID uuid.UUID) (int64, error) {
	if s.failUnbind {
		return 0, errInjected
	}
	return s.GormStore.UnbindCollections(ctx, certID)
}

func (s *faultyStore) DeactivateCertificate(ctx context.Context, certID uuid.UUID) error {
	if s.failDeactivate {
		return errInjected
	}
	return s.GormStore.DeactivateCertificate(ctx, certID)
}

func (s *faultyStore) DeleteCertificate(ctx context.Context, certID uuid.UUID) error {
	if s.failDeleteCert {
		return errInjected
	}
	return s.GormStore.DeleteCertificate(ctx, certID)
}

func (s *faultyStore) AppendLog(ctx context.Context, entry *domain.CertificateLog) error {
	if s.failIssuedLog && entry.Action == domain.LogActionIssued {
		return errInjected
	}
	return s.GormStore.AppendLog(ctx, entry)
}

// fixedCodes hands out codes in order, repeating the last one.
type fixedCodes struct {
	codes []string
	n     int
	err   error
}

func (g *fixedCodes) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	i := g.n
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.n++
	return g.codes[i], nil
}
