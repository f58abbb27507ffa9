package models

// PriceRange buckets used by listings and registrations.
const (
	PriceBudget   = "₹"
	PriceModerate = "₹₹"
	PriceHigh     = "₹₹₹"
	PricePremium  = "₹₹₹₹"
)

// ValidPriceRanges lists the accepted price range symbols.
var ValidPriceRanges = []string{PriceBudget, PriceModerate, PriceHigh, PricePremium}

// NearbyBusiness is the wire shape served by GET /api/businesses.
type NearbyBusiness struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	OpenNow  bool    `json:"open_now"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address,omitempty"`
	Distance int     `json:"distance"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	PlaceID  string  `json:"place_id"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// Business is the directory listing built per request from live POI data.
// It is never persisted.
type Business struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Category           string            `json:"category"`
	Description        string            `json:"description"`
	Address            string            `json:"address"`
	Phone              string            `json:"phone"`
	Email              string            `json:"email"`
	Website            string            `json:"website,omitempty"`
	Image              string            `json:"image"`
	Rating             float64           `json:"rating"`
	ReviewCount        int               `json:"reviewCount"`
	PriceRange         string            `json:"priceRange"`
	Hours              map[string]string `json:"hours"`
	Amenities          []string          `json:"amenities"`
	StudentDiscount    bool              `json:"studentDiscount"`
	Latitude           float64           `json:"latitude"`
	Longitude          float64           `json:"longitude"`
	NearbyInstitutions []string          `json:"nearbyInstitutions"`
	SocialMedia        *SocialMedia      `json:"socialMedia,omitempty"`
}

// FilterOptions configures the listing filter. PriceRange and OpenNow are
// carried for clients but not applied by the filter engine.
type FilterOptions struct {
	Category        []string `json:"category"`
	PriceRange      []string `json:"priceRange"`
	Rating          float64  `json:"rating"`
	StudentDiscount bool     `json:"studentDiscount"`
	OpenNow         bool     `json:"openNow"`
	SearchQuery     string   `json:"searchQuery"`
	Institution     string   `json:"institution,omitempty"`
}

// CategoryGroups maps the student-facing groups to OSM category values
// (underscores already replaced by spaces).
var CategoryGroups = map[string][]string{
	"restaurants": {"restaurant", "food court", "fast food", "cafe"},
	"cafes":       {"cafe", "coffee"},
	"xerox":       {"copyshop", "stationery"},
	"hostels":     {"hostel", "guest house"},
	"groceries":   {"supermarket", "convenience"},
	"salons":      {"hairdresser", "beauty"},
	"gyms":        {"fitness centre", "sports centre", "gym"},
	"electronics": {"electronics", "computer", "mobile phone"},
	"hospitals":   {"hospital", "clinic", "pharmacy"},
	"libraries":   {"library"},
	"study_spots": {"library", "cafe", "coworking space"},
}
