package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/geocode"
	ingestrepo "github.com/moorfield/propsearch/internal/repository/ingest"
)

type fakeRepo struct {
	stored    []ingestrepo.Record
	suggested []ingestrepo.Record
	recreated int
	exists    bool
	err       error
}

func (f *fakeRepo) Store(_ context.Context, records []ingestrepo.Record) error {
	f.stored = records
	return f.err
}

func (f *fakeRepo) AddSuggestions(_ context.Context, records []ingestrepo.Record) error {
	f.suggested = records
	return f.err
}

func (f *fakeRepo) RecreateIndex(_ context.Context) error {
	f.recreated++
	return f.err
}

func (f *fakeRepo) IndexExists(_ context.Context) (bool, error) {
	return f.exists, f.err
}

type fakeGeocoder struct {
	mu     sync.Mutex
	points map[string]*geocode.Point
	err    error
	calls  int
}

func (f *fakeGeocoder) Lookup(_ context.Context, outward, inward string) (*geocode.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.points[outward+" "+inward], nil
}

func str(s string) *string { return &s }

func tx(postcode *string) sale.Transaction {
	return sale.Transaction{
		ID:           uuid.New(),
		Price:        100000,
		Date:         time.Unix(1690000000, 0).UTC(),
		PropertyType: sale.Detached,
		BuildType:    sale.Established,
		ContractType: sale.Freehold,
		Building:     "1",
		Postcode:     postcode,
		Town:         "YORK",
		District:     "YORK",
		County:       "NORTH YORKSHIRE",
	}
}

func TestUpload_GeocodesAndStoresOnce(t *testing.T) {
	repo := &fakeRepo{}
	geo := &fakeGeocoder{points: map[string]*geocode.Point{
		"YO1 7HH": {Lat: 53.96, Lon: -1.08},
	}}
	svc := New(repo, geo, Config{MaxBatchSize: 10, GeocodeWorkers: 2})

	err := svc.Upload(context.Background(), []sale.Transaction{
		tx(str("YO1 7HH")),
		tx(str("ZZ9 9ZZ")),
		tx(nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.stored) != 3 {
		t.Fatalf("expected one batch of 3, got %d", len(repo.stored))
	}
	if repo.stored[0].Point == nil {
		t.Error("expected first record geocoded")
	}
	if repo.stored[1].Point != nil || repo.stored[2].Point != nil {
		t.Error("unresolved and absent postcodes must carry no point")
	}
	if len(repo.suggested) != 3 {
		t.Errorf("expected suggestions fed from all records")
	}
	// no lookup for the record with no postcode
	if geo.calls != 2 {
		t.Errorf("expected 2 lookups, got %d", geo.calls)
	}
}

func TestUpload_GeocoderFailureDoesNotFailBatch(t *testing.T) {
	repo := &fakeRepo{}
	geo := &fakeGeocoder{err: errors.New("down")}
	svc := New(repo, geo, Config{MaxBatchSize: 10})

	if err := svc.Upload(context.Background(), []sale.Transaction{tx(str("YO1 7HH"))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.stored) != 1 || repo.stored[0].Point != nil {
		t.Errorf("expected record stored without point, got %+v", repo.stored)
	}
}

func TestUpload_BatchTooLarge(t *testing.T) {
	svc := New(&fakeRepo{}, &fakeGeocoder{}, Config{MaxBatchSize: 1})

	err := svc.Upload(context.Background(), []sale.Transaction{tx(nil), tx(nil)})
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestUpload_EmptyBatchIsNoop(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, &fakeGeocoder{}, Config{MaxBatchSize: 10})

	if err := svc.Upload(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.stored != nil {
		t.Error("expected no store call for empty batch")
	}
}

func TestUpload_StoreFailure(t *testing.T) {
	repo := &fakeRepo{err: errors.New("down")}
	svc := New(repo, &fakeGeocoder{}, Config{MaxBatchSize: 10})

	if err := svc.Upload(context.Background(), []sale.Transaction{tx(nil)}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureIndex(t *testing.T) {
	repo := &fakeRepo{exists: true}
	svc := New(repo, &fakeGeocoder{}, Config{})

	if err := svc.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.recreated != 0 {
		t.Error("existing index must not be recreated")
	}

	repo.exists = false
	if err := svc.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.recreated != 1 {
		t.Errorf("expected one recreate, got %d", repo.recreated)
	}
}
