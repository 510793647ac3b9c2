package domain

const (
	AllAreas    = "all"
	AnyBedrooms = 0
)

// BedroomOptions are the bedroom counts offered by the browse filter.
var BedroomOptions = []int{1, 2, 3}

// Filter is the browse filter state. The zero value matches nothing in
// particular, so use NewFilter for the "all / any" defaults.
type Filter struct {
	Area     string `json:"area"`
	Bedrooms int    `json:"bedrooms"`
}

func NewFilter() Filter { return Filter{Area: AllAreas, Bedrooms: AnyBedrooms} }

func (f Filter) WithArea(area string) Filter {
	f.Area = area
	return f
}

func (f Filter) WithBedrooms(n int) Filter {
	f.Bedrooms = n
	return f
}

func (f Filter) Matches(l Listing) bool {
	matchArea := f.Area == AllAreas || string(l.Location) == f.Area
	matchBHK := f.Bedrooms == AnyBedrooms || l.Bedrooms == f.Bedrooms
	return matchArea && matchBHK
}

// Visible returns copies of the listings matching f, in collection order.
func Visible(listings []Listing, f Filter) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if f.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}
