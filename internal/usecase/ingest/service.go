// Package ingest orchestrates transaction uploads: bounded-concurrency
// geocoding, document mapping, and one backend batch per upload.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/geocode"
	"github.com/moorfield/propsearch/internal/metrics"
	ingestrepo "github.com/moorfield/propsearch/internal/repository/ingest"
)

// Config bounds an upload.
type Config struct {
	MaxBatchSize   int
	GeocodeWorkers int
}

// Service handles transaction ingestion.
type Service struct {
	repo Repository
	geo  geocode.Geocoder
	cfg  Config
}

// New creates an ingestion service.
func New(repo Repository, geo geocode.Geocoder, cfg Config) *Service {
	if cfg.GeocodeWorkers <= 0 {
		cfg.GeocodeWorkers = 4
	}
	return &Service{repo: repo, geo: geo, cfg: cfg}
}

// Upload geocodes, maps, and stores one batch of transactions, then feeds
// the suggestion dictionary. A postcode that fails to resolve never fails
// the batch; the record is indexed without a coordinate. Geocoder transport
// errors are likewise swallowed per record for the same reason.
func (s *Service) Upload(ctx context.Context, txs []sale.Transaction) error {
	if s.cfg.MaxBatchSize > 0 && len(txs) > s.cfg.MaxBatchSize {
		return fmt.Errorf("%d transactions over limit %d: %w",
			len(txs), s.cfg.MaxBatchSize, domain.ErrBatchTooLarge)
	}
	if len(txs) == 0 {
		return nil
	}

	records := make([]ingestrepo.Record, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.GeocodeWorkers)
	for i, tx := range txs {
		g.Go(func() error {
			records[i] = ingestrepo.Record{
				Tx:    tx,
				Point: s.resolve(gctx, tx.Postcode),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.repo.Store(ctx, records); err != nil {
		metrics.IngestBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("store batch: %w", err)
	}
	if err := s.repo.AddSuggestions(ctx, records); err != nil {
		metrics.IngestBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("feed suggestions: %w", err)
	}

	metrics.IngestBatchesTotal.WithLabelValues("ok").Inc()
	metrics.IngestDocumentsTotal.Add(float64(len(records)))
	return nil
}

// RecreateIndex rebuilds the transaction index schema.
func (s *Service) RecreateIndex(ctx context.Context) error {
	return s.repo.RecreateIndex(ctx)
}

// EnsureIndex creates the index when it does not exist yet.
func (s *Service) EnsureIndex(ctx context.Context) error {
	ok, err := s.repo.IndexExists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.repo.RecreateIndex(ctx)
}

// resolve geocodes a record's postcode. Any miss, malformed value, or
// resolver failure yields nil.
func (s *Service) resolve(ctx context.Context, postcode *string) *geocode.Point {
	if postcode == nil {
		return nil
	}
	parts := strings.Fields(*postcode)
	if len(parts) != 2 {
		return nil
	}
	point, err := s.geo.Lookup(ctx, parts[0], parts[1])
	if err != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return nil
	}
	if point == nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("hit").Inc()
	return point
}
