package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kartikfr/card-genius/internal/domain"
)

// Engine ranks cards by the net annual savings they give a spending profile.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	bonuses BonusRegistry
}

func NewEngine(bonuses BonusRegistry) *Engine {
	if bonuses == nil {
		bonuses = BonusRegistry{}
	}
	return &Engine{bonuses: bonuses}
}

// ContractViolation reports malformed input handed to the engine by its caller.
type ContractViolation struct {
	Msg string
}

func (e *ContractViolation) Error() string {
	return "contract violation: " + e.Msg
}

func IsContractViolation(err error) bool {
	var target *ContractViolation
	return errors.As(err, &target)
}

func violationf(format string, args ...any) error {
	return &ContractViolation{Msg: fmt.Sprintf(format, args...)}
}

// Compute evaluates every card against the profile and returns the results
// sorted by net annual savings, highest first. Exact ties keep catalog order.
func (e *Engine) Compute(profile domain.SpendingProfile, cards []domain.Card) ([]domain.RecommendationResult, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}
	if err := checkCatalog(cards); err != nil {
		return nil, err
	}

	signals := NewSignals(profile)
	results := make([]domain.RecommendationResult, 0, len(cards))
	for i := range cards {
		results = append(results, e.evaluate(&cards[i], profile, signals))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].NetAnnualSavings > results[j].NetAnnualSavings
	})

	return results, nil
}

func (e *Engine) evaluate(card *domain.Card, profile domain.SpendingProfile, signals Signals) domain.RecommendationResult {
	breakdown := categorySavings(card, profile)
	applySharedCaps(card.SharedCaps, breakdown)
	breakdown = append(breakdown, e.bonusEntries(card, signals)...)

	var monthly float64
	for _, item := range breakdown {
		monthly += item.Saved
	}
	annual := monthly * 12

	// A zero threshold means no spend-based waiver.
	waived := card.AnnualFee == 0 ||
		(card.WaiverThreshold != nil && *card.WaiverThreshold > 0 &&
			float64(signals.TotalAnnualSpend) >= *card.WaiverThreshold)
	appliedFee := card.AnnualFee
	if waived {
		appliedFee = 0
	}

	return domain.RecommendationResult{
		Card:             *card,
		MonthlySavings:   monthly,
		AnnualSavings:    annual,
		NetAnnualSavings: annual - appliedFee,
		IsFeeWaived:      waived,
		AppliedFee:       appliedFee,
		Breakdown:        breakdown,
	}
}

func categorySavings(card *domain.Card, profile domain.SpendingProfile) []domain.SavingsBreakdown {
	breakdown := make([]domain.SavingsBreakdown, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		spend := profile.Amount(cat)
		reward, ok := card.Reward(cat)
		if spend <= 0 || !ok {
			continue
		}
		if reward.MinSpend != nil && spend < *reward.MinSpend {
			continue
		}

		saved := float64(spend) * reward.Rate
		capped := false
		if reward.Cap != nil && saved > *reward.Cap {
			saved = *reward.Cap
			capped = true
		}
		if saved <= 0 {
			continue
		}

		breakdown = append(breakdown, domain.SavingsBreakdown{
			Category: string(cat),
			Spend:    spend,
			Saved:    saved,
			Rate:     reward.Rate,
			Cap:      copyCap(reward.Cap),
			IsCapped: capped,
		})
	}
	return breakdown
}

// applySharedCaps scales the members of each over-limit group down
// proportionally so their sum equals the group ceiling.
func applySharedCaps(groups []domain.SharedCap, breakdown []domain.SavingsBreakdown) {
	for _, group := range groups {
		limit := group.MonthlyCap()

		var members []int
		var total float64
		for i := range breakdown {
			if inGroup(group, breakdown[i].Category) {
				members = append(members, i)
				total += breakdown[i].Saved
			}
		}
		if total <= limit {
			continue
		}

		scale := limit / total
		for _, i := range members {
			breakdown[i].Saved *= scale
			breakdown[i].Cap = copyCap(&limit)
			breakdown[i].IsCapped = true
		}
	}
}

func (e *Engine) bonusEntries(card *domain.Card, signals Signals) []domain.SavingsBreakdown {
	// Bonuses are spend-driven; nothing fires on an empty profile.
	if signals.TotalMonthlySpend == 0 {
		return nil
	}

	var entries []domain.SavingsBreakdown
	for _, rule := range e.bonuses[card.BonusKey()] {
		if !rule.Eligible(signals) {
			continue
		}
		entries = append(entries, domain.SavingsBreakdown{
			Category: rule.Label,
			Saved:    rule.Amount(signals),
			IsBonus:  true,
		})
	}
	return entries
}

func inGroup(group domain.SharedCap, category string) bool {
	for _, c := range group.Categories {
		if string(c) == category {
			return true
		}
	}
	return false
}

func copyCap(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func checkProfile(profile domain.SpendingProfile) error {
	for _, cat := range domain.Categories {
		if profile.Amount(cat) < 0 {
			return violationf("negative spend %d for category %s", profile.Amount(cat), cat)
		}
	}
	return nil
}

func checkCatalog(cards []domain.Card) error {
	seen := make(map[string]struct{}, len(cards))
	for i := range cards {
		card := &cards[i]
		if _, dup := seen[card.ID]; dup {
			return violationf("duplicate card id %q", card.ID)
		}
		seen[card.ID] = struct{}{}

		for cat, reward := range card.Rewards {
			if reward.Rate < 0 {
				return violationf("card %q has negative rate for %s", card.ID, cat)
			}
		}

		grouped := make(map[domain.Category]int)
		for g, group := range card.SharedCaps {
			for _, cat := range group.Categories {
				if prev, ok := grouped[cat]; ok && prev != g {
					return violationf("card %q lists %s in shared caps %d and %d", card.ID, cat, prev, g)
				}
				grouped[cat] = g
			}
		}
	}
	return nil
}
