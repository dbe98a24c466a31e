package engine

import "github.com/kartikfr/card-genius/internal/domain"

// Signals are the aggregate spend figures bonus rules are evaluated against.
type Signals struct {
	Profile           domain.SpendingProfile
	TotalMonthlySpend int64
	TotalAnnualSpend  int64
}

func NewSignals(profile domain.SpendingProfile) Signals {
	return Signals{
		Profile:           profile,
		TotalMonthlySpend: profile.TotalMonthly(),
		TotalAnnualSpend:  profile.TotalAnnual(),
	}
}

// ActiveCategories counts categories with monthly spend of at least threshold.
func (s Signals) ActiveCategories(threshold int64) int {
	n := 0
	for _, cat := range domain.Categories {
		if s.Profile.Amount(cat) >= threshold {
			n++
		}
	}
	return n
}

type Predicate func(Signals) bool

// AmountFunc returns a bonus as a monthly-equivalent saving.
type AmountFunc func(Signals) float64

// BonusRule adds one labelled breakdown line when Eligible holds.
type BonusRule struct {
	Label    string
	Eligible Predicate
	Amount   AmountFunc
}

// BonusRegistry maps a bonus key (card bonusRule, or card id) to its rules,
// evaluated in order.
type BonusRegistry map[string][]BonusRule

func MonthlySpendAtLeast(amount int64) Predicate {
	return func(s Signals) bool { return s.TotalMonthlySpend >= amount }
}

func MonthlySpendAbove(amount int64) Predicate {
	return func(s Signals) bool { return s.TotalMonthlySpend > amount }
}

func AnnualSpendAtLeast(amount int64) Predicate {
	return func(s Signals) bool { return s.TotalAnnualSpend >= amount }
}

func ActiveCategoriesAtLeast(count int, threshold int64) Predicate {
	return func(s Signals) bool { return s.ActiveCategories(threshold) >= count }
}

func AnyOf(preds ...Predicate) Predicate {
	return func(s Signals) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

func Fixed(monthly float64) AmountFunc {
	return func(Signals) float64 { return monthly }
}

// AnnualMilestone spreads a once-a-year reward across twelve months.
func AnnualMilestone(annual float64) AmountFunc {
	return func(Signals) float64 { return annual / 12 }
}

// DefaultBonuses returns the milestone and bonus programmes of the built-in catalog.
func DefaultBonuses() BonusRegistry {
	registry := BonusRegistry{}
	registry.Register("amex-gold", BonusRule{
		Label:    "Milestone Bonus",
		Eligible: AnyOf(ActiveCategoriesAtLeast(2, 1000), MonthlySpendAbove(6000)),
		Amount:   Fixed(300),
	})
	registry.Register("amex-platinum-travel",
		BonusRule{Label: "Milestone (1.9L)", Eligible: AnnualSpendAtLeast(190000), Amount: AnnualMilestone(4500)},
		BonusRule{Label: "Milestone (4L)", Eligible: AnnualSpendAtLeast(400000), Amount: AnnualMilestone(10000)},
	)
	registry.Register("amex-mrcc",
		BonusRule{Label: "Bonus (4x1500)", Eligible: MonthlySpendAtLeast(6000), Amount: Fixed(300)},
		BonusRule{Label: "Bonus (20k Spend)", Eligible: MonthlySpendAtLeast(20000), Amount: Fixed(300)},
	)
	return registry
}

// Register appends rules under key.
func (r BonusRegistry) Register(key string, rules ...BonusRule) {
	r[key] = append(r[key], rules...)
}
