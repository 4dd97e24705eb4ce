package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/pharmamesh/logging"
)

// StoreOptions configures an InMemoryStore.
type StoreOptions struct {
	Logger logging.Logger
}

// InMemoryStore holds the knowledge graph in process memory, guarded by a
// read-write mutex so lookup stages can query concurrently.
type InMemoryStore struct {
	mu             sync.RWMutex
	investigations []Investigation
	capas          []CAPADetail
	brands         map[string]Brand // Keyed by lowercased brand name
	batches        []Batch
	opts           StoreOptions
}

// NewInMemoryStore creates a store seeded with the development fixture data.
func NewInMemoryStore(optFns ...func(o *StoreOptions)) *InMemoryStore {
	s := NewEmptyStore(optFns...)
	seedFixture(s)
	return s
}

// NewEmptyStore creates a store without any seeded data. Use the Add* methods
// to populate it.
func NewEmptyStore(optFns ...func(o *StoreOptions)) *InMemoryStore {
	opts := StoreOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{
		brands: make(map[string]Brand),
		opts:   opts,
	}
}

// AddInvestigation inserts an investigation node.
func (s *InMemoryStore) AddInvestigation(inv Investigation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investigations = append(s.investigations, inv)
}

// AddCAPA inserts a CAPA detail node.
func (s *InMemoryStore) AddCAPA(c CAPADetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capas = append(s.capas, c)
}

// AddBrand inserts or replaces a brand node.
func (s *InMemoryStore) AddBrand(b Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[strings.ToLower(b.Name)] = b
}

// AddBatch inserts a batch node.
func (s *InMemoryStore) AddBatch(b Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
}

// Investigations returns investigations for the brand, optionally restricted
// to the given CAPA ids. Brand matching is case-insensitive; a nil or empty
// capaIDs slice means no CAPA filter.
func (s *InMemoryStore) Investigations(brand string, capaIDs []string) []Investigation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idSet := map[string]struct{}{}
	for _, id := range capaIDs {
		idSet[strings.ToUpper(id)] = struct{}{}
	}

	var out []Investigation
	for _, inv := range s.investigations {
		if !strings.EqualFold(inv.Brand, brand) {
			continue
		}
		if len(idSet) > 0 {
			if _, ok := idSet[strings.ToUpper(inv.CAPAID)]; !ok {
				continue
			}
		}
		out = append(out, inv)
	}

	s.opts.Logger.Debug("Queried investigations", "brand", brand, "capa_ids", len(capaIDs), "found", len(out))

	return out
}

// CAPADetails returns the graph record for a CAPA id, if present.
func (s *InMemoryStore) CAPADetails(capaID string) (CAPADetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.capas {
		if strings.EqualFold(c.ID, capaID) {
			return c, true
		}
	}

	return CAPADetail{}, false
}

// BatchInfo returns the batch record for a batch number, if present.
func (s *InMemoryStore) BatchInfo(batchNumber string) (Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.batches {
		if strings.EqualFold(b.BatchNumber, batchNumber) {
			return b, true
		}
	}

	return Batch{}, false
}

// BrandSummary aggregates the brand node with all of its investigations and
// batches. The bool is false when the brand is unknown.
func (s *InMemoryStore) BrandSummary(brand string) (BrandSummary, bool) {
	s.mu.RLock()
	b, ok := s.brands[strings.ToLower(brand)]
	s.mu.RUnlock()

	if !ok {
		s.opts.Logger.Warn("Brand not found", "brand", brand)
		return BrandSummary{}, false
	}

	investigations := s.Investigations(brand, nil)

	s.mu.RLock()
	var batches []Batch
	for _, batch := range s.batches {
		if strings.EqualFold(batch.Brand, brand) {
			batches = append(batches, batch)
		}
	}
	s.mu.RUnlock()

	return BrandSummary{
		Brand:              b,
		InvestigationCount: len(investigations),
		Investigations:     investigations,
		BatchCount:         len(batches),
		Batches:            batches,
	}, true
}

// RelatedEntities walks one hop from the entity. For a CAPA that is its
// investigations; for an investigation it is the linked CAPA and batch.
func (s *InMemoryStore) RelatedEntities(entityID, entityType string) ([]RelatedEntity, error) {
	switch strings.ToLower(entityType) {
	case EntityCAPA:
		s.mu.RLock()
		defer s.mu.RUnlock()

		var related []RelatedEntity
		for _, inv := range s.investigations {
			if strings.EqualFold(inv.CAPAID, entityID) {
				related = append(related, RelatedEntity{Type: EntityInvestigation, Data: inv})
			}
		}
		return related, nil

	case EntityInvestigation:
		s.mu.RLock()
		var found *Investigation
		for i := range s.investigations {
			if strings.EqualFold(s.investigations[i].ID, entityID) {
				found = &s.investigations[i]
				break
			}
		}
		s.mu.RUnlock()

		if found == nil {
			return nil, nil
		}

		var related []RelatedEntity
		if found.CAPAID != "" {
			if capa, ok := s.CAPADetails(found.CAPAID); ok {
				related = append(related, RelatedEntity{Type: EntityCAPA, Data: capa})
			}
		}
		if found.BatchNumber != "" {
			if batch, ok := s.BatchInfo(found.BatchNumber); ok {
				related = append(related, RelatedEntity{Type: EntityBatch, Data: batch})
			}
		}
		return related, nil

	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}

// CountByBrand counts investigations belonging to the brand.
func (s *InMemoryStore) CountByBrand(brand string) int {
	return len(s.Investigations(brand, nil))
}
