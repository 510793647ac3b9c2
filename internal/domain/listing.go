package domain

import (
	"fmt"
	"time"
)

type Area string

const (
	Koramangala    Area = "Koramangala"
	Indiranagar    Area = "Indiranagar"
	Whitefield     Area = "Whitefield"
	HSRLayout      Area = "HSR Layout"
	Jayanagar      Area = "Jayanagar"
	Malleswaram    Area = "Malleswaram"
	Marathahalli   Area = "Marathahalli"
	ElectronicCity Area = "Electronic City"
	Hebbal         Area = "Hebbal"
	Banashankari   Area = "Banashankari"
)

// Areas lists every area a listing can be placed in, in display order.
var Areas = []Area{
	Koramangala, Indiranagar, Whitefield, HSRLayout, Jayanagar,
	Malleswaram, Marathahalli, ElectronicCity, Hebbal, Banashankari,
}

func (a Area) Valid() bool {
	for _, x := range Areas {
		if x == a {
			return true
		}
	}
	return false
}

type PropertyType string

const (
	Apartment        PropertyType = "Apartment"
	IndependentHouse PropertyType = "Independent House"
	Villa            PropertyType = "Villa"
)

func (t PropertyType) Valid() bool {
	return t == Apartment || t == IndependentHouse || t == Villa
}

type Furnishing string

const (
	FullyFurnished Furnishing = "Fully Furnished"
	SemiFurnished  Furnishing = "Semi Furnished"
	Unfurnished    Furnishing = "Unfurnished"
)

func (f Furnishing) Valid() bool {
	return f == FullyFurnished || f == SemiFurnished || f == Unfurnished
}

// Listing is a rentable property. It is never edited after creation.
type Listing struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         int64        `json:"price"`
	Deposit       int64        `json:"deposit"`
	Location      Area         `json:"location"`
	Bedrooms      int          `json:"bhk"`
	Type          PropertyType `json:"type"`
	Furnishing    Furnishing   `json:"furnishing"`
	Images        []string     `json:"image_urls"`
	OwnerName     string       `json:"owner_name"`
	ContactNumber string       `json:"-"`
	PostedOn      time.Time    `json:"posted_on"`
}

// Clone returns a copy that shares no slices with l.
func (l Listing) Clone() Listing {
	out := l
	if l.Images != nil {
		out.Images = make([]string, len(l.Images))
		copy(out.Images, l.Images)
	}
	return out
}

// SpeechText is the narration read out by a listing's listen button.
func (l Listing) SpeechText() string {
	return fmt.Sprintf("Available for rent: A %d BHK %s in %s. The rent is %d rupees per month with a deposit of %d. %s",
		l.Bedrooms, l.Type, l.Location, l.Price, l.Deposit, l.Description)
}

// Draft is an unvalidated listing as submitted by the post-property form.
type Draft struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         int64        `json:"price"`
	Deposit       int64        `json:"deposit"`
	Location      Area         `json:"location"`
	Bedrooms      int          `json:"bhk"`
	Type          PropertyType `json:"type"`
	Furnishing    Furnishing   `json:"furnishing"`
	Images        []string     `json:"image_urls"`
	ContactNumber string       `json:"contact_number"`
}

const (
	WelcomeMessage = "Welcome to Real No Broker. The easiest way to rent homes in Bangalore without paying any brokerage. Browse thousands of verified listings."
	// FormAssistantMessage is read by the assistant button on the post-property form.
	FormAssistantMessage = "Please fill out the form details below to list your property. You can upload multiple photos of your property to attract more tenants."
)
