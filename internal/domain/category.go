package domain

type Category string

const (
	CategoryFlipkart    Category = "flipkart"
	CategoryAmazon      Category = "amazon"
	CategoryOtherOnline Category = "otherOnline"
	CategoryGrocery     Category = "grocery"
	CategoryUtilities   Category = "utilities"
	CategoryFuel        Category = "fuel"
	CategoryDining      Category = "dining"
	CategoryMovies      Category = "movies"
	CategoryTravel      Category = "travel"
	CategoryOffline     Category = "offline"
)

// Categories lists every spending category in evaluation order.
var Categories = []Category{
	CategoryFlipkart,
	CategoryAmazon,
	CategoryOtherOnline,
	CategoryGrocery,
	CategoryUtilities,
	CategoryFuel,
	CategoryDining,
	CategoryMovies,
	CategoryTravel,
	CategoryOffline,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SpendingProfile is a user's monthly spend per category.
// Keys missing from a JSON document decode to zero.
type SpendingProfile struct {
	Flipkart    int64 `json:"flipkart" validate:"gte=0"`
	Amazon      int64 `json:"amazon" validate:"gte=0"`
	OtherOnline int64 `json:"otherOnline" validate:"gte=0"`
	Grocery     int64 `json:"grocery" validate:"gte=0"`
	Utilities   int64 `json:"utilities" validate:"gte=0"`
	Fuel        int64 `json:"fuel" validate:"gte=0"`
	Dining      int64 `json:"dining" validate:"gte=0"`
	Movies      int64 `json:"movies" validate:"gte=0"`
	Travel      int64 `json:"travel" validate:"gte=0"`
	Offline     int64 `json:"offline" validate:"gte=0"`
}

func (p SpendingProfile) Amount(c Category) int64 {
	switch c {
	case CategoryFlipkart:
		return p.Flipkart
	case CategoryAmazon:
		return p.Amazon
	case CategoryOtherOnline:
		return p.OtherOnline
	case CategoryGrocery:
		return p.Grocery
	case CategoryUtilities:
		return p.Utilities
	case CategoryFuel:
		return p.Fuel
	case CategoryDining:
		return p.Dining
	case CategoryMovies:
		return p.Movies
	case CategoryTravel:
		return p.Travel
	case CategoryOffline:
		return p.Offline
	}
	return 0
}

func (p SpendingProfile) TotalMonthly() int64 {
	var total int64
	for _, c := range Categories {
		total += p.Amount(c)
	}
	return total
}

func (p SpendingProfile) TotalAnnual() int64 {
	return p.TotalMonthly() * 12
}

// RewardRate describes what one category earns on a card.
// Cap bounds the computed monthly savings, not the spend.
type RewardRate struct {
	Rate     float64  `json:"rate" validate:"gte=0"`
	Cap      *float64 `json:"cap,omitempty" validate:"omitempty,gte=0"`
	MinSpend *int64   `json:"minSpend,omitempty" validate:"omitempty,gte=0"`
}

// CardRewards maps categories to their reward terms. A missing category earns nothing.
type CardRewards map[Category]RewardRate

type CapPeriod string

const (
	PeriodMonthly CapPeriod = "monthly"
	PeriodAnnual  CapPeriod = "annual"
)

// SharedCap pools the savings of several categories under one ceiling.
type SharedCap struct {
	Categories []Category `json:"categories" validate:"required,min=1,dive,category"`
	Cap        float64    `json:"cap" validate:"gte=0"`
	Period     CapPeriod  `json:"period,omitempty" validate:"omitempty,oneof=monthly annual"`
}

// MonthlyCap returns the ceiling expressed per month.
func (s SharedCap) MonthlyCap() float64 {
	if s.Period == PeriodAnnual {
		return s.Cap / 12
	}
	return s.Cap
}
