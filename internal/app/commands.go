package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"realnobroker/internal/domain"
)

const (
	defaultOwnerName = "Current User"
	defaultBedrooms  = 2
)

type ListingService struct {
	store *ListingStore
	now   func() time.Time
	newID func() string
}

func NewListingService(store *ListingStore) *ListingService {
	return &ListingService{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock swaps the time source; tests use it to pin PostedOn and the
// placeholder image URL.
func (s *ListingService) WithClock(now func() time.Time) *ListingService {
	s.now = now
	return s
}

// CreateListing validates d, completes it into a Listing and prepends it to
// the store. On any validation failure the store is left untouched.
func (s *ListingService) CreateListing(ctx context.Context, d domain.Draft) (domain.Listing, error) {
	if strings.TrimSpace(d.Title) == "" || d.Price == 0 ||
		strings.TrimSpace(d.Description) == "" || strings.TrimSpace(d.ContactNumber) == "" {
		return domain.Listing{}, domain.ErrValidation
	}
	if err := applyDraftDefaults(&d); err != nil {
		return domain.Listing{}, err
	}

	now := s.now().UTC()
	images := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if strings.TrimSpace(img) == "" {
			return domain.Listing{}, fmt.Errorf("%w: empty image reference", domain.ErrValidation)
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		images = []string{placeholderImage(now)}
	}

	l := domain.Listing{
		ID:            s.newID(),
		Title:         d.Title,
		Description:   d.Description,
		Price:         d.Price,
		Deposit:       d.Deposit,
		Location:      d.Location,
		Bedrooms:      d.Bedrooms,
		Type:          d.Type,
		Furnishing:    d.Furnishing,
		Images:        images,
		OwnerName:     defaultOwnerName,
		ContactNumber: d.ContactNumber,
		PostedOn:      now.Truncate(24 * time.Hour),
	}
	s.store.AddListing(l)

	log.Info().
		Str("listing_id", l.ID).
		Str("location", string(l.Location)).
		Int("bhk", l.Bedrooms).
		Int("images", len(l.Images)).
		Msg("listing posted")
	return l, nil
}

// applyDraftDefaults fills the form's preselected values and rejects values
// outside the enumerations.
func applyDraftDefaults(d *domain.Draft) error {
	if d.Location == "" {
		d.Location = domain.Areas[0]
	}
	if d.Type == "" {
		d.Type = domain.Apartment
	}
	if d.Furnishing == "" {
		d.Furnishing = domain.SemiFurnished
	}
	if d.Bedrooms == 0 {
		d.Bedrooms = defaultBedrooms
	}
	switch {
	case !d.Location.Valid():
		return fmt.Errorf("%w: unknown location %q", domain.ErrValidation, d.Location)
	case !d.Type.Valid():
		return fmt.Errorf("%w: unknown property type %q", domain.ErrValidation, d.Type)
	case !d.Furnishing.Valid():
		return fmt.Errorf("%w: unknown furnishing %q", domain.ErrValidation, d.Furnishing)
	case d.Bedrooms < 0:
		return fmt.Errorf("%w: bedrooms must be positive", domain.ErrValidation)
	case d.Price < 0 || d.Deposit < 0:
		return fmt.Errorf("%w: amounts must not be negative", domain.ErrValidation)
	}
	return nil
}

func placeholderImage(now time.Time) string {
	return fmt.Sprintf("https://picsum.photos/800/600?random=%d", now.UnixMilli())
}
