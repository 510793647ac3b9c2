package app

import (
	"sync"

	"realnobroker/internal/domain"
)

// FilterState is an area and bedroom filter with atomic transitions. The
// store carries one as its default view and every session carries its own.
type FilterState struct {
	mu     sync.RWMutex
	filter domain.Filter
}

func NewFilterState() *FilterState { return &FilterState{filter: domain.NewFilter()} }

func (f *FilterState) SetAreaFilter(area string) {
	f.mu.Lock()
	f.filter = f.filter.WithArea(area)
	f.mu.Unlock()
}

func (f *FilterState) SetBedroomFilter(n int) {
	f.mu.Lock()
	f.filter = f.filter.WithBedrooms(n)
	f.mu.Unlock()
}

// ClearFilters resets both values to all/any in one step.
func (f *FilterState) ClearFilters() {
	f.mu.Lock()
	f.filter = domain.NewFilter()
	f.mu.Unlock()
}

func (f *FilterState) Filter() domain.Filter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter
}

// ListingStore holds the listing collection, newest first, together with
// a default browse filter for single-visitor use.
type ListingStore struct {
	*FilterState

	mu       sync.RWMutex
	listings []domain.Listing
}

func NewListingStore(seed []domain.Listing) *ListingStore {
	s := &ListingStore{FilterState: NewFilterState()}
	s.listings = make([]domain.Listing, 0, len(seed))
	for _, l := range seed {
		s.listings = append(s.listings, l.Clone())
	}
	return s
}

// AddListing puts l at the front of the collection. It never fails.
func (s *ListingStore) AddListing(l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append([]domain.Listing{l.Clone()}, s.listings...)
}

// VisibleListings applies the store's default filter.
func (s *ListingStore) VisibleListings() []domain.Listing {
	return s.VisibleFor(s.Filter())
}

// VisibleFor applies f instead of the store's own filter. Sessions keep
// their own FilterState and browse the shared collection through this.
func (s *ListingStore) VisibleFor(f domain.Filter) []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Visible(s.listings, f)
}

func (s *ListingStore) Listings() []domain.Listing {
	return s.VisibleFor(domain.NewFilter())
}

func (s *ListingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *ListingStore) Get(id string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}
