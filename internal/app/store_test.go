package app_test

import (
	"testing"

	"realnobroker/internal/app"
	"realnobroker/internal/domain"
)

func ids(ls []domain.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestStore_VisibleMatchesPredicate(t *testing.T) {
	s := app.NewListingStore(domain.SeedListings())
	areas := append([]string{domain.AllAreas}, "Koramangala", "Whitefield", "Indiranagar", "Hebbal")
	beds := []int{domain.AnyBedrooms, 1, 2, 3, 4}

	for _, a := range areas {
		for _, b := range beds {
			s.SetAreaFilter(a)
			s.SetBedroomFilter(b)
			got := map[string]bool{}
			for _, l := range s.VisibleListings() {
				got[l.ID] = true
			}
			for _, l := range s.Listings() {
				want := (a == domain.AllAreas || string(l.Location) == a) && (b == domain.AnyBedrooms || l.Bedrooms == b)
				if got[l.ID] != want {
					t.Fatalf("area=%s bhk=%d listing %s: visible=%v want %v", a, b, l.ID, got[l.ID], want)
				}
			}
		}
	}
}

func TestStore_KoramangalaAnyBedrooms(t *testing.T) {
	s := app.NewListingStore(domain.SeedListings())
	s.SetAreaFilter("Koramangala")

	got := s.VisibleListings()
	if len(got) != 1 || got[0].ID != "1" || got[0].Bedrooms != 2 {
		t.Fatalf("expected only the Koramangala 2 BHK, got %v", ids(got))
	}
}

func TestStore_AddListingPrepends(t *testing.T) {
	s := app.NewListingStore(domain.SeedListings())
	before := s.Len()

	s.AddListing(domain.Listing{ID: "new", Location: domain.Hebbal, Bedrooms: 1, Images: []string{"x"}})

	if s.Len() != before+1 {
		t.Fatalf("expected length %d, got %d", before+1, s.Len())
	}
	if got := ids(s.Listings()); got[0] != "new" || got[1] != "1" {
		t.Fatalf("expected new listing first and order preserved, got %v", got)
	}
}

func TestStore_FiltersIndependentAndClear(t *testing.T) {
	s := app.NewListingStore(domain.SeedListings())
	s.SetBedroomFilter(3)
	s.SetAreaFilter("Whitefield")
	if f := s.Filter(); f.Area != "Whitefield" || f.Bedrooms != 3 {
		t.Fatalf("unexpected filter %+v", f)
	}
	s.SetAreaFilter("Koramangala")
	if got := s.VisibleListings(); len(got) != 0 {
		t.Fatalf("expected nothing for Koramangala 3 BHK, got %v", ids(got))
	}

	s.ClearFilters()
	if f := s.Filter(); f != domain.NewFilter() {
		t.Fatalf("expected defaults after clear, got %+v", f)
	}
	if got := s.VisibleListings(); len(got) != 3 {
		t.Fatalf("expected all seeds after clear, got %v", ids(got))
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := app.NewListingStore(domain.SeedListings())
	got := s.VisibleListings()
	got[0].Images[0] = "mutated"

	l, err := s.Get("1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l.Images[0] == "mutated" {
		t.Fatalf("store leaked its backing slice")
	}
	if _, err := s.Get("missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
