package domain

// Card is the canonical credit card record consumed by the engine.
type Card struct {
	ID              string      `json:"id" validate:"required"`
	Name            string      `json:"name" validate:"required"`
	Bank            string      `json:"bank"`
	ImageURL        string      `json:"imageUrl"`
	JoiningFee      float64     `json:"joiningFee" validate:"gte=0"`
	AnnualFee       float64     `json:"annualFee" validate:"gte=0"`
	FeeWaiver       string      `json:"feeWaiver"`
	WaiverThreshold *float64    `json:"waiverThreshold,omitempty" validate:"omitempty,gte=0"`
	JoiningBonus    string      `json:"joiningBonus,omitempty"`
	Rewards         CardRewards `json:"rewards" validate:"required,dive"`
	SharedCaps      []SharedCap `json:"sharedCaps,omitempty" validate:"dive"`
	BonusRule       string      `json:"bonusRule,omitempty"`
	Features        []string    `json:"features"`
	ApplyLink       string      `json:"applyLink"`
}

// Reward returns the terms for a category and whether the card defines any.
func (c *Card) Reward(cat Category) (RewardRate, bool) {
	r, ok := c.Rewards[cat]
	return r, ok
}

// BonusKey is the registry key for this card's bonus rules.
func (c *Card) BonusKey() string {
	if c.BonusRule != "" {
		return c.BonusRule
	}
	return c.ID
}
