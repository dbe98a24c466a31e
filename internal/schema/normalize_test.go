package schema

import (
	"testing"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExhaustive = `{
  "cardIdentification": {
    "cardId": "new-card-001",
    "cardName": "New Bank Credit Card",
    "bankName": "New Bank",
    "cardImageUrl": "https://placehold.co/600x400/png",
    "applicationUrl": "https://newbank.example/apply"
  },
  "fees": {
    "joiningFee": { "amount": 500 },
    "annualFee": {
      "amount": 500,
      "waiverConditions": [
        { "type": "milestone", "threshold": 1, "description": "ignored" },
        { "type": "spend_based", "threshold": 100000, "description": "Waived on 1L spend" }
      ]
    }
  },
  "flipkartRewards": {
    "isApplicable": true,
    "rewardType": "cashback",
    "cashback": { "baseRate": 5.0, "monthlyCapAmount": 750 }
  },
  "amazonRewards": {
    "isApplicable": true,
    "rewardType": "points",
    "rewardPoints": { "basePointsPerRs100": 4, "pointValue": 0.25, "monthlyPointsCap": 2000 }
  },
  "otherEcommerce": {
    "genericOnlineShopping": { "isApplicable": false, "rewardType": "cashback", "cashback": { "baseRate": 9 } },
    "platforms": {
      "swiggy": { "isApplicable": true, "rewardType": "miles", "cashback": { "baseRate": 2 } },
      "bookmyshow": { "isApplicable": true, "rewardType": "neuCoins" }
    }
  },
  "offlineRetailShopping": {
    "genericRetail": { "isApplicable": true, "rewardType": "rewardPoints", "rewardPoints": { "basePointsPerRs100": 3, "pointValue": 0.3 } }
  },
  "welcomeBenefits": { "joiningBonus": { "amount": 500, "type": "Amazon voucher" } },
  "marketing": { "keyHighlights": ["5% Cashback on Flipkart", "1% Flat other spends"] }
}`

func fixedNormalizer() *Normalizer {
	return &Normalizer{now: func() time.Time { return time.UnixMilli(1700000000000) }}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    Kind
		wantErr bool
	}{
		{"exhaustive", `{"cardIdentification": {"cardId": "x"}}`, KindExhaustive, false},
		{"exhaustive wins over canonical", `{"cardIdentification": {}, "id": "x", "rewards": {}}`, KindExhaustive, false},
		{"canonical", `{"id": "x", "rewards": {}}`, KindCanonical, false},
		{"canonical without rewards", `{"id": "x"}`, KindUnknown, true},
		{"null identification", `{"cardIdentification": null}`, KindUnknown, true},
		{"empty object", `{}`, KindUnknown, true},
		{"not json", `not json`, KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.doc))
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, IsSchemaError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalize_Exhaustive(t *testing.T) {
	card, err := fixedNormalizer().Normalize([]byte(sampleExhaustive))
	require.NoError(t, err)

	assert.Equal(t, "new-card-001", card.ID)
	assert.Equal(t, "New Bank Credit Card", card.Name)
	assert.Equal(t, "New Bank", card.Bank)
	assert.Equal(t, "https://newbank.example/apply", card.ApplyLink)
	assert.Equal(t, 500.0, card.JoiningFee)
	assert.Equal(t, 500.0, card.AnnualFee)
	assert.Equal(t, "Waived on 1L spend", card.FeeWaiver)
	require.NotNil(t, card.WaiverThreshold)
	assert.Equal(t, 100000.0, *card.WaiverThreshold)

	flipkart := card.Rewards[domain.CategoryFlipkart]
	assert.Equal(t, 0.05, flipkart.Rate)
	require.NotNil(t, flipkart.Cap)
	assert.Equal(t, 750.0, *flipkart.Cap)

	amazon := card.Rewards[domain.CategoryAmazon]
	assert.Equal(t, 0.01, amazon.Rate)
	require.NotNil(t, amazon.Cap)
	assert.Equal(t, 500.0, *amazon.Cap)

	assert.Equal(t, 0.0, card.Rewards[domain.CategoryOtherOnline].Rate, "not applicable")
	assert.Equal(t, 0.02, card.Rewards[domain.CategoryDining].Rate, "miles fall back to cashback rate")
	assert.Equal(t, 0.0, card.Rewards[domain.CategoryMovies].Rate, "no cashback block")
	assert.Equal(t, 0.009, card.Rewards[domain.CategoryOffline].Rate)
	assert.Equal(t, 0.0, card.Rewards[domain.CategoryGrocery].Rate, "absent section")
	assert.Nil(t, card.Rewards[domain.CategoryGrocery].Cap)
	assert.Len(t, card.Rewards, len(domain.Categories))

	assert.Equal(t, "₹500 Amazon voucher", card.JoiningBonus)
	assert.Equal(t, []string{
		"5% Cashback on Flipkart",
		"1% Flat other spends",
		"Joining Bonus: 500 Amazon voucher",
	}, card.Features)
}

func TestNormalize_ExhaustivePlaceholders(t *testing.T) {
	card, err := fixedNormalizer().Normalize([]byte(`{"cardIdentification": {}}`))
	require.NoError(t, err)

	assert.Equal(t, "card-1700000000000-1", card.ID)
	assert.Equal(t, "Unknown Card", card.Name)
	assert.Equal(t, "Unknown Bank", card.Bank)
	assert.Equal(t, "#", card.ApplyLink)
	assert.Equal(t, "Not applicable", card.FeeWaiver)
	assert.Nil(t, card.WaiverThreshold)
	assert.Equal(t, "None", card.JoiningBonus)
	assert.Zero(t, card.AnnualFee)
	assert.Empty(t, card.Features)
}

func TestNormalize_Canonical(t *testing.T) {
	doc := `{
	  "id": "hdfc-millennia",
	  "name": "HDFC Millennia",
	  "bank": "HDFC Bank",
	  "annualFee": 1000,
	  "waiverThreshold": 100000,
	  "rewards": {"amazon": {"rate": 0.05, "cap": 1000}, "dining": {"rate": 0.05}},
	  "sharedCaps": [{"categories": ["amazon", "dining"], "cap": 1000, "period": "monthly"}]
	}`

	card, err := NewNormalizer().Normalize([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "hdfc-millennia", card.ID)
	assert.Equal(t, 0.05, card.Rewards[domain.CategoryAmazon].Rate)
	require.Len(t, card.SharedCaps, 1)
	assert.Equal(t, domain.PeriodMonthly, card.SharedCaps[0].Period)
	assert.NotNil(t, card.Features)
}

func TestNormalize_CanonicalZeroThresholdIsAbsent(t *testing.T) {
	doc := `{"id": "zero", "name": "Zero", "annualFee": 500, "waiverThreshold": 0, "rewards": {"fuel": {"rate": 0.01}}}`

	card, err := NewNormalizer().Normalize([]byte(doc))
	require.NoError(t, err)
	assert.Nil(t, card.WaiverThreshold)
	assert.Equal(t, 500.0, card.AnnualFee)
}

func TestNormalize_CanonicalInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown reward category", `{"id": "x", "name": "x", "rewards": {"casino": {"rate": 0.1}}}`},
		{"negative rate", `{"id": "x", "name": "x", "rewards": {"fuel": {"rate": -0.1}}}`},
		{"missing name", `{"id": "x", "rewards": {"fuel": {"rate": 0.1}}}`},
		{"unknown shared cap member", `{"id": "x", "name": "x", "rewards": {}, "sharedCaps": [{"categories": ["casino"], "cap": 10}]}`},
		{"empty shared cap", `{"id": "x", "name": "x", "rewards": {}, "sharedCaps": [{"categories": [], "cap": 10}]}`},
		{"bad period", `{"id": "x", "name": "x", "rewards": {}, "sharedCaps": [{"categories": ["fuel"], "cap": 10, "period": "weekly"}]}`},
		{"overlapping shared caps", `{"id": "x", "name": "x", "rewards": {}, "sharedCaps": [{"categories": ["fuel"], "cap": 10}, {"categories": ["fuel"], "cap": 20}]}`},
		{"wrong type", `{"id": "x", "name": "x", "rewards": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer().Normalize([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsSchemaError(err), err.Error())
		})
	}
}

func TestNormalize_UnknownFormat(t *testing.T) {
	_, err := NewNormalizer().Normalize([]byte(`{"name": "orphan"}`))
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "unknown card format")
}

func TestNormalizeAll(t *testing.T) {
	docs := `[` + sampleExhaustive + `, {"id": "plain", "name": "Plain", "rewards": {"offline": {"rate": 0.01}}}]`

	cards, err := fixedNormalizer().NormalizeAll([]byte(docs))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "new-card-001", cards[0].ID)
	assert.Equal(t, "plain", cards[1].ID)

	_, err = fixedNormalizer().NormalizeAll([]byte(`[{"bogus": true}]`))
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "index 0")
}

func TestNormalizeAll_PlaceholderIDsAreUnique(t *testing.T) {
	docs := `[{"cardIdentification": {"cardName": "A"}}, {"cardIdentification": {"cardName": "B"}}]`

	cards, err := fixedNormalizer().NormalizeAll([]byte(docs))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "card-1700000000000-1", cards[0].ID)
	assert.Equal(t, "card-1700000000000-2", cards[1].ID)
	assert.NotEqual(t, cards[0].ID, cards[1].ID)
}
