package engine

import (
	"testing"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/seeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func ptr[T any](v T) *T { return &v }

func noRewards() domain.CardRewards {
	rewards := domain.CardRewards{}
	for _, c := range domain.Categories {
		rewards[c] = domain.RewardRate{Rate: 0}
	}
	return rewards
}

func cardWith(id string, annualFee float64, mutate func(*domain.Card)) domain.Card {
	card := domain.Card{ID: id, Name: id, AnnualFee: annualFee, Rewards: noRewards()}
	if mutate != nil {
		mutate(&card)
	}
	return card
}

func TestCompute_CategoryCap(t *testing.T) {
	card := cardWith("grocery-card", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryGrocery] = domain.RewardRate{Rate: 0.05, Cap: ptr(150.0)}
	})

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Grocery: 5000}, []domain.Card{card})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "grocery", res.Breakdown[0].Category)
	assert.InDelta(t, 150, res.Breakdown[0].Saved, tolerance)
	assert.True(t, res.Breakdown[0].IsCapped)
	assert.InDelta(t, 150, res.MonthlySavings, tolerance)
	assert.InDelta(t, 1800, res.AnnualSavings, tolerance)
}

func TestCompute_SharedCapScalesProportionally(t *testing.T) {
	card := cardWith("pooled", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryDining] = domain.RewardRate{Rate: 0.1}
		c.Rewards[domain.CategoryGrocery] = domain.RewardRate{Rate: 0.1}
		c.SharedCaps = []domain.SharedCap{{
			Categories: []domain.Category{domain.CategoryDining, domain.CategoryGrocery},
			Cap:        1000,
		}}
	})
	profile := domain.SpendingProfile{Dining: 7000, Grocery: 6000}

	results, err := NewEngine(nil).Compute(profile, []domain.Card{card})
	require.NoError(t, err)

	saved := map[string]domain.SavingsBreakdown{}
	for _, item := range results[0].Breakdown {
		saved[item.Category] = item
	}
	assert.InDelta(t, 538.4615, saved["dining"].Saved, 1e-3)
	assert.InDelta(t, 461.5385, saved["grocery"].Saved, 1e-3)
	assert.True(t, saved["dining"].IsCapped)
	assert.True(t, saved["grocery"].IsCapped)
	require.NotNil(t, saved["dining"].Cap)
	assert.Equal(t, 1000.0, *saved["dining"].Cap)
	assert.InDelta(t, 1000, results[0].MonthlySavings, tolerance)
}

func TestCompute_SharedCapUnderLimitUntouched(t *testing.T) {
	card := cardWith("pooled", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryAmazon] = domain.RewardRate{Rate: 0.05}
		c.SharedCaps = []domain.SharedCap{{Categories: []domain.Category{domain.CategoryAmazon}, Cap: 1000}}
	})

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Amazon: 2000}, []domain.Card{card})
	require.NoError(t, err)
	require.Len(t, results[0].Breakdown, 1)
	assert.InDelta(t, 100, results[0].Breakdown[0].Saved, tolerance)
	assert.False(t, results[0].Breakdown[0].IsCapped)
	assert.Nil(t, results[0].Breakdown[0].Cap)
}

func TestCompute_AnnualSharedCapIsMonthlyTwelfth(t *testing.T) {
	card := cardWith("annual-pool", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryTravel] = domain.RewardRate{Rate: 0.1}
		c.SharedCaps = []domain.SharedCap{{
			Categories: []domain.Category{domain.CategoryTravel},
			Cap:        6000,
			Period:     domain.PeriodAnnual,
		}}
	})

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Travel: 10000}, []domain.Card{card})
	require.NoError(t, err)
	assert.InDelta(t, 500, results[0].MonthlySavings, tolerance)
}

func TestCompute_FeeWaivedByThreshold(t *testing.T) {
	card := cardWith("waivable", 500, func(c *domain.Card) {
		c.WaiverThreshold = ptr(100000.0)
	})
	profile := domain.SpendingProfile{Offline: 10000}

	results, err := NewEngine(nil).Compute(profile, []domain.Card{card})
	require.NoError(t, err)
	assert.True(t, results[0].IsFeeWaived)
	assert.Equal(t, 0.0, results[0].AppliedFee)
	assert.Equal(t, 0.0, results[0].NetAnnualSavings)
}

func TestCompute_FeeChargedBelowThreshold(t *testing.T) {
	card := cardWith("waivable", 500, func(c *domain.Card) {
		c.WaiverThreshold = ptr(100000.0)
		c.Rewards[domain.CategoryOffline] = domain.RewardRate{Rate: 0.01}
	})

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Offline: 5000}, []domain.Card{card})
	require.NoError(t, err)
	assert.False(t, results[0].IsFeeWaived)
	assert.Equal(t, 500.0, results[0].AppliedFee)
	assert.InDelta(t, 600-500, results[0].NetAnnualSavings, tolerance)
}

func TestCompute_ZeroThresholdIsNoWaiver(t *testing.T) {
	card := cardWith("zero-threshold", 500, func(c *domain.Card) {
		c.WaiverThreshold = ptr(0.0)
	})

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Offline: 10000}, []domain.Card{card})
	require.NoError(t, err)
	assert.False(t, results[0].IsFeeWaived)
	assert.Equal(t, 500.0, results[0].AppliedFee)
}

func TestCompute_MinSpendGatesRate(t *testing.T) {
	card := cardWith("min-spend", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryFuel] = domain.RewardRate{Rate: 0.05, MinSpend: ptr(int64(400))}
	})
	engine := NewEngine(nil)

	results, err := engine.Compute(domain.SpendingProfile{Fuel: 300}, []domain.Card{card})
	require.NoError(t, err)
	assert.Empty(t, results[0].Breakdown)

	results, err = engine.Compute(domain.SpendingProfile{Fuel: 400}, []domain.Card{card})
	require.NoError(t, err)
	assert.InDelta(t, 20, results[0].MonthlySavings, tolerance)
}

func TestCompute_MissingCategoryEarnsNothing(t *testing.T) {
	card := domain.Card{ID: "partial", Name: "partial", Rewards: domain.CardRewards{
		domain.CategoryAmazon: {Rate: 0.05},
	}}

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Amazon: 1000, Dining: 5000}, []domain.Card{card})
	require.NoError(t, err)
	require.Len(t, results[0].Breakdown, 1)
	assert.Equal(t, "amazon", results[0].Breakdown[0].Category)
}

func TestCompute_RankingAndStableTies(t *testing.T) {
	cards := []domain.Card{
		cardWith("tie-a", 0, nil),
		cardWith("best", 0, func(c *domain.Card) { c.Rewards[domain.CategoryAmazon] = domain.RewardRate{Rate: 0.05} }),
		cardWith("tie-b", 0, nil),
		cardWith("fee-only", 1000, nil),
	}

	results, err := NewEngine(nil).Compute(domain.SpendingProfile{Amazon: 1000}, cards)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Card.ID
	}
	assert.Equal(t, []string{"best", "tie-a", "tie-b", "fee-only"}, ids)
}

func TestCompute_Bonuses(t *testing.T) {
	engine := NewEngine(DefaultBonuses())
	card := cardWith("amex-platinum-travel", 3500, nil)

	tests := []struct {
		name    string
		profile domain.SpendingProfile
		labels  []string
		monthly float64
	}{
		{"below milestones", domain.SpendingProfile{Travel: 10000}, nil, 0},
		{"first milestone", domain.SpendingProfile{Travel: 16000}, []string{"Milestone (1.9L)"}, 375},
		{"both milestones", domain.SpendingProfile{Travel: 40000}, []string{"Milestone (1.9L)", "Milestone (4L)"}, 375 + 10000.0/12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.Compute(tt.profile, []domain.Card{card})
			require.NoError(t, err)

			var labels []string
			for _, item := range results[0].Breakdown {
				assert.True(t, item.IsBonus)
				assert.Zero(t, item.Spend)
				assert.Zero(t, item.Rate)
				labels = append(labels, item.Category)
			}
			assert.Equal(t, tt.labels, labels)
			assert.InDelta(t, tt.monthly, results[0].MonthlySavings, tolerance)
		})
	}
}

func TestBonusRegistry_Register(t *testing.T) {
	registry := DefaultBonuses()
	registry.Register("amex-gold", BonusRule{Label: "Anniversary", Eligible: MonthlySpendAtLeast(1), Amount: Fixed(50)})
	registry.Register("house-card", BonusRule{Label: "Welcome Back", Eligible: MonthlySpendAtLeast(5000), Amount: Fixed(120)})
	engine := NewEngine(registry)

	results, err := engine.Compute(domain.SpendingProfile{Dining: 1000, Grocery: 1000}, []domain.Card{
		cardWith("amex-gold", 0, nil),
		cardWith("house-card", 0, nil),
	})
	require.NoError(t, err)

	byID := map[string]domain.RecommendationResult{}
	for _, r := range results {
		byID[r.Card.ID] = r
	}

	gold := byID["amex-gold"]
	require.Len(t, gold.Breakdown, 2)
	assert.Equal(t, "Milestone Bonus", gold.Breakdown[0].Category)
	assert.Equal(t, "Anniversary", gold.Breakdown[1].Category)
	assert.InDelta(t, 350, gold.MonthlySavings, tolerance)

	assert.Empty(t, byID["house-card"].Breakdown)
	assert.Zero(t, byID["house-card"].MonthlySavings)
}

func TestCompute_BonusRuleKeyOverridesID(t *testing.T) {
	card := cardWith("gold-variant", 0, func(c *domain.Card) { c.BonusRule = "amex-gold" })

	results, err := NewEngine(DefaultBonuses()).Compute(domain.SpendingProfile{Dining: 1000, Grocery: 1000}, []domain.Card{card})
	require.NoError(t, err)
	require.Len(t, results[0].Breakdown, 1)
	assert.Equal(t, "Milestone Bonus", results[0].Breakdown[0].Category)
	assert.InDelta(t, 300, results[0].MonthlySavings, tolerance)
}

func TestCompute_ContractViolations(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.Compute(domain.SpendingProfile{Fuel: -1}, nil)
	assert.True(t, IsContractViolation(err))

	_, err = engine.Compute(domain.SpendingProfile{}, []domain.Card{cardWith("dup", 0, nil), cardWith("dup", 0, nil)})
	assert.True(t, IsContractViolation(err))

	overlapping := cardWith("overlap", 0, func(c *domain.Card) {
		c.SharedCaps = []domain.SharedCap{
			{Categories: []domain.Category{domain.CategoryDining}, Cap: 100},
			{Categories: []domain.Category{domain.CategoryDining, domain.CategoryMovies}, Cap: 100},
		}
	})
	_, err = engine.Compute(domain.SpendingProfile{}, []domain.Card{overlapping})
	assert.True(t, IsContractViolation(err))

	negative := cardWith("negative", 0, func(c *domain.Card) {
		c.Rewards[domain.CategoryMovies] = domain.RewardRate{Rate: -0.1}
	})
	_, err = engine.Compute(domain.SpendingProfile{}, []domain.Card{negative})
	assert.True(t, IsContractViolation(err))
}

func TestCompute_InvariantsOverDefaultCatalog(t *testing.T) {
	cards, err := seeds.DefaultCatalog()
	require.NoError(t, err)
	engine := NewEngine(DefaultBonuses())

	profiles := []domain.SpendingProfile{
		{},
		{Grocery: 5000},
		{Flipkart: 8000, Amazon: 12000, Dining: 4000, Movies: 1500},
		{Flipkart: 20000, Amazon: 20000, OtherOnline: 5000, Grocery: 8000, Utilities: 4000,
			Fuel: 6000, Dining: 9000, Movies: 2000, Travel: 25000, Offline: 10000},
	}

	for _, profile := range profiles {
		first, err := engine.Compute(profile, cards)
		require.NoError(t, err)
		second, err := engine.Compute(profile, cards)
		require.NoError(t, err)
		assert.Equal(t, first, second, "deterministic output")

		for i, res := range first {
			if i > 0 {
				assert.GreaterOrEqual(t, first[i-1].NetAnnualSavings, res.NetAnnualSavings)
			}

			fee := res.Card.AnnualFee
			if res.IsFeeWaived {
				fee = 0
			}
			assert.InDelta(t, res.AnnualSavings-fee, res.NetAnnualSavings, tolerance)

			if profile.TotalMonthly() == 0 {
				assert.Zero(t, res.MonthlySavings, res.Card.ID)
			}

			bySaved := map[string]float64{}
			for _, item := range res.Breakdown {
				if item.Cap != nil {
					assert.LessOrEqual(t, item.Saved, *item.Cap+tolerance)
				}
				bySaved[item.Category] = item.Saved
			}
			for _, group := range res.Card.SharedCaps {
				var sum float64
				for _, c := range group.Categories {
					sum += bySaved[string(c)]
				}
				assert.LessOrEqual(t, sum, group.MonthlyCap()+tolerance, res.Card.ID)
			}
		}
	}
}

func TestSortBreakdownBySaved(t *testing.T) {
	result := domain.RecommendationResult{Breakdown: []domain.SavingsBreakdown{
		{Category: "amazon", Saved: 10},
		{Category: "dining", Saved: 50},
		{Category: "fuel", Saved: 20},
	}}

	sorted := SortBreakdownBySaved(result)
	assert.Equal(t, "dining", sorted.Breakdown[0].Category)
	assert.Equal(t, "fuel", sorted.Breakdown[1].Category)
	assert.Equal(t, "amazon", result.Breakdown[0].Category, "input untouched")
}
