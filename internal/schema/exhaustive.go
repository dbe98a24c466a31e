package schema

// ExhaustiveCard is the verbose admin-facing import format. Every block is
// optional; absent blocks fall back to the defaults documented on Normalize.
type ExhaustiveCard struct {
	CardIdentification    *CardIdentification `json:"cardIdentification"`
	Fees                  *Fees               `json:"fees"`
	FlipkartRewards       *RewardSection      `json:"flipkartRewards"`
	AmazonRewards         *RewardSection      `json:"amazonRewards"`
	OtherEcommerce        *OtherEcommerce     `json:"otherEcommerce"`
	OfflineRetailShopping *OfflineRetail      `json:"offlineRetailShopping"`
	UtilityPayments       *RewardSection      `json:"utilityPayments"`
	FuelRewards           *RewardSection      `json:"fuelRewards"`
	TravelRewards         *RewardSection      `json:"travelRewards"`
	WelcomeBenefits       *WelcomeBenefits    `json:"welcomeBenefits"`
	Marketing             *Marketing          `json:"marketing"`
}

type CardIdentification struct {
	CardID         string `json:"cardId"`
	CardName       string `json:"cardName"`
	BankName       string `json:"bankName"`
	CardImageURL   string `json:"cardImageUrl"`
	ApplicationURL string `json:"applicationUrl"`
}

type Fees struct {
	JoiningFee *FeeAmount `json:"joiningFee"`
	AnnualFee  *AnnualFee `json:"annualFee"`
}

type FeeAmount struct {
	Amount float64 `json:"amount"`
}

type AnnualFee struct {
	Amount           float64           `json:"amount"`
	WaiverConditions []WaiverCondition `json:"waiverConditions"`
}

type WaiverCondition struct {
	Type        string  `json:"type"`
	Threshold   float64 `json:"threshold"`
	Description string  `json:"description"`
}

const (
	RewardCashback     = "cashback"
	RewardPoints       = "points"
	RewardRewardPoints = "rewardPoints"
)

type RewardSection struct {
	IsApplicable bool          `json:"isApplicable"`
	RewardType   string        `json:"rewardType"`
	Cashback     *CashbackTerm `json:"cashback"`
	RewardPoints *PointsTerm   `json:"rewardPoints"`
}

type CashbackTerm struct {
	BaseRate         float64 `json:"baseRate"`
	MonthlyCapAmount float64 `json:"monthlyCapAmount"`
}

type PointsTerm struct {
	BasePointsPerRs100 float64 `json:"basePointsPerRs100"`
	PointValue         float64 `json:"pointValue"`
	MonthlyPointsCap   float64 `json:"monthlyPointsCap"`
}

type OtherEcommerce struct {
	GenericOnlineShopping *RewardSection            `json:"genericOnlineShopping"`
	Platforms             map[string]*RewardSection `json:"platforms"`
}

// platform returns the first applicable platform section among names.
func (o *OtherEcommerce) platform(names ...string) *RewardSection {
	if o == nil {
		return nil
	}
	for _, name := range names {
		if s := o.Platforms[name]; s != nil && s.IsApplicable {
			return s
		}
	}
	return nil
}

type OfflineRetail struct {
	Supermarkets  *RewardSection `json:"supermarkets"`
	GenericRetail *RewardSection `json:"genericRetail"`
}

type WelcomeBenefits struct {
	JoiningBonus *JoiningBonus `json:"joiningBonus"`
}

type JoiningBonus struct {
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

type Marketing struct {
	KeyHighlights []string `json:"keyHighlights"`
}
