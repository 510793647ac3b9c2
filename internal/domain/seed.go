package domain

import "time"

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// SeedListings returns the listings the store starts with, in display order.
func SeedListings() []Listing {
	return []Listing{
		{
			ID:          "1",
			Title:       "Spacious 2 BHK in Koramangala",
			Description: "A beautiful 2 BHK apartment located in the heart of Koramangala 4th Block. Close to parks and restaurants. Comes with covered parking.",
			Price:       35000,
			Deposit:     150000,
			Location:    Koramangala,
			Bedrooms:    2,
			Type:        Apartment,
			Furnishing:  SemiFurnished,
			Images: []string{
				"https://picsum.photos/800/600?random=1",
				"https://picsum.photos/800/600?random=101",
				"https://picsum.photos/800/600?random=102",
			},
			OwnerName:     "Rajesh Kumar",
			ContactNumber: "9876543210",
			PostedOn:      date(2023, time.October, 25),
		},
		{
			ID:          "2",
			Title:       "Luxury 3 BHK Villa in Whitefield",
			Description: "Premium gated community villa with private garden. Amenities include swimming pool, gym, and 24/7 security. Perfect for families.",
			Price:       65000,
			Deposit:     300000,
			Location:    Whitefield,
			Bedrooms:    3,
			Type:        Villa,
			Furnishing:  FullyFurnished,
			Images: []string{
				"https://picsum.photos/800/600?random=2",
				"https://picsum.photos/800/600?random=201",
			},
			OwnerName:     "Sneha Reddy",
			ContactNumber: "9988776655",
			PostedOn:      date(2023, time.October, 26),
		},
		{
			ID:            "3",
			Title:         "Cozy 1 BHK in Indiranagar",
			Description:   "Perfect for bachelors. Walkable distance from Metro station. Includes modular kitchen and wardrobes.",
			Price:         22000,
			Deposit:       100000,
			Location:      Indiranagar,
			Bedrooms:      1,
			Type:          Apartment,
			Furnishing:    Unfurnished,
			Images:        []string{"https://picsum.photos/800/600?random=3"},
			OwnerName:     "Amit Singh",
			ContactNumber: "9123456789",
			PostedOn:      date(2023, time.October, 27),
		},
	}
}
