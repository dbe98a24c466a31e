package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/shopspring/decimal"
)

// SchemaError reports an import document that cannot become a card.
type SchemaError struct {
	Msg    string
	Fields []string
}

func (e *SchemaError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Fields, "; "))
}

func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

type Kind int

const (
	KindUnknown Kind = iota
	KindCanonical
	KindExhaustive
)

func (k Kind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindExhaustive:
		return "exhaustive"
	}
	return "unknown"
}

type envelope struct {
	CardIdentification json.RawMessage `json:"cardIdentification"`
	ID                 json.RawMessage `json:"id"`
	Rewards            json.RawMessage `json:"rewards"`
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte(`""`))
}

// Detect classifies a document. An identification block wins over the
// canonical id+rewards pair.
func Detect(data []byte) (Kind, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return KindUnknown, &SchemaError{Msg: fmt.Sprintf("invalid JSON document: %v", err)}
	}
	switch {
	case present(env.CardIdentification):
		return KindExhaustive, nil
	case present(env.ID) && present(env.Rewards):
		return KindCanonical, nil
	}
	return KindUnknown, &SchemaError{Msg: "unknown card format: expected the exhaustive schema (cardIdentification) or the canonical schema (id and rewards)"}
}

type Normalizer struct {
	now func() time.Time
	seq atomic.Uint64
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize turns an exhaustive or canonical document into a validated card.
func (n *Normalizer) Normalize(data []byte) (*domain.Card, error) {
	kind, err := Detect(data)
	if err != nil {
		return nil, err
	}

	var card *domain.Card
	switch kind {
	case KindExhaustive:
		var doc ExhaustiveCard
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &SchemaError{Msg: fmt.Sprintf("decode exhaustive card: %v", err)}
		}
		card = n.FromExhaustive(&doc)
	case KindCanonical:
		card = &domain.Card{}
		if err := json.Unmarshal(data, card); err != nil {
			return nil, &SchemaError{Msg: fmt.Sprintf("decode canonical card: %v", err)}
		}
		if card.Features == nil {
			card.Features = []string{}
		}
		if card.WaiverThreshold != nil && *card.WaiverThreshold == 0 {
			card.WaiverThreshold = nil
		}
	default:
		return nil, &SchemaError{Msg: fmt.Sprintf("unsupported card format %s", kind)}
	}

	if err := Validate(card); err != nil {
		return nil, err
	}
	return card, nil
}

// NormalizeAll normalizes a JSON array of documents, which may mix both formats.
func (n *Normalizer) NormalizeAll(data []byte) ([]domain.Card, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, &SchemaError{Msg: fmt.Sprintf("expected a JSON array of cards: %v", err)}
	}

	cards := make([]domain.Card, 0, len(docs))
	for i, doc := range docs {
		card, err := n.Normalize(doc)
		if err != nil {
			return nil, fmt.Errorf("card at index %d: %w", i, err)
		}
		cards = append(cards, *card)
	}
	return cards, nil
}

// placeholderID stays unique across documents normalized in the same millisecond.
func (n *Normalizer) placeholderID() string {
	return fmt.Sprintf("card-%d-%d", n.now().UnixMilli(), n.seq.Add(1))
}

// FromExhaustive maps the verbose schema onto the canonical card. Missing
// identity fields get placeholders instead of failing.
func (n *Normalizer) FromExhaustive(doc *ExhaustiveCard) *domain.Card {
	id := CardIdentification{}
	if doc.CardIdentification != nil {
		id = *doc.CardIdentification
	}

	cardID := id.CardID
	if cardID == "" {
		cardID = n.placeholderID()
	}

	card := &domain.Card{
		ID:        cardID,
		Name:      orDefault(id.CardName, "Unknown Card"),
		Bank:      orDefault(id.BankName, "Unknown Bank"),
		ImageURL:  id.CardImageURL,
		ApplyLink: orDefault(id.ApplicationURL, "#"),
		FeeWaiver: "Not applicable",
		Features:  []string{},
	}

	if doc.Fees != nil {
		if doc.Fees.JoiningFee != nil {
			card.JoiningFee = doc.Fees.JoiningFee.Amount
		}
		if doc.Fees.AnnualFee != nil {
			card.AnnualFee = doc.Fees.AnnualFee.Amount
			if cond := spendWaiver(doc.Fees.AnnualFee.WaiverConditions); cond != nil {
				card.FeeWaiver = cond.Description
				if cond.Threshold > 0 {
					threshold := cond.Threshold
					card.WaiverThreshold = &threshold
				}
			}
		}
	}

	card.Rewards = domain.CardRewards{
		domain.CategoryFlipkart:    sectionReward(doc.FlipkartRewards),
		domain.CategoryAmazon:      sectionReward(doc.AmazonRewards),
		domain.CategoryOtherOnline: sectionReward(genericOnline(doc.OtherEcommerce)),
		domain.CategoryGrocery:     sectionReward(supermarkets(doc.OfflineRetailShopping)),
		domain.CategoryUtilities:   sectionReward(doc.UtilityPayments),
		domain.CategoryFuel:        sectionReward(doc.FuelRewards),
		domain.CategoryDining:      sectionReward(doc.OtherEcommerce.platform("swiggy", "zomato")),
		domain.CategoryMovies:      sectionReward(doc.OtherEcommerce.platform("bookmyshow")),
		domain.CategoryTravel:      sectionReward(doc.TravelRewards),
		domain.CategoryOffline:     sectionReward(genericRetail(doc.OfflineRetailShopping)),
	}

	if doc.Marketing != nil {
		card.Features = append(card.Features, doc.Marketing.KeyHighlights...)
	}
	card.JoiningBonus = "None"
	if doc.WelcomeBenefits != nil && doc.WelcomeBenefits.JoiningBonus != nil {
		bonus := doc.WelcomeBenefits.JoiningBonus
		amount := ""
		if bonus.Amount > 0 {
			amount = formatAmount(bonus.Amount)
			card.JoiningBonus = fmt.Sprintf("₹%s %s", amount, bonus.Type)
		}
		card.Features = append(card.Features, fmt.Sprintf("Joining Bonus: %s %s", amount, bonus.Type))
	}

	return card
}

func spendWaiver(conds []WaiverCondition) *WaiverCondition {
	for i := range conds {
		switch conds[i].Type {
		case "spend_based", "spend-based":
			return &conds[i]
		}
	}
	return nil
}

func sectionReward(s *RewardSection) domain.RewardRate {
	if s == nil || !s.IsApplicable {
		return domain.RewardRate{}
	}
	return domain.RewardRate{Rate: sectionRate(s), Cap: sectionCap(s)}
}

var hundred = decimal.NewFromInt(100)

func sectionRate(s *RewardSection) float64 {
	switch s.RewardType {
	case RewardCashback:
		if s.Cashback == nil {
			return 0
		}
		return decimal.NewFromFloat(s.Cashback.BaseRate).Div(hundred).InexactFloat64()
	case RewardPoints, RewardRewardPoints:
		if s.RewardPoints == nil {
			return 0
		}
		points := decimal.NewFromFloat(s.RewardPoints.BasePointsPerRs100)
		value := decimal.NewFromFloat(s.RewardPoints.PointValue)
		return points.Mul(value).Div(hundred).InexactFloat64()
	default:
		// miles, neuCoins and other currencies fall back to a cashback-style rate.
		if s.Cashback == nil {
			return 0
		}
		return decimal.NewFromFloat(s.Cashback.BaseRate).Div(hundred).InexactFloat64()
	}
}

func sectionCap(s *RewardSection) *float64 {
	if s.Cashback != nil && s.Cashback.MonthlyCapAmount > 0 {
		c := s.Cashback.MonthlyCapAmount
		return &c
	}
	if s.RewardPoints != nil && s.RewardPoints.MonthlyPointsCap > 0 {
		c := decimal.NewFromFloat(s.RewardPoints.MonthlyPointsCap).
			Mul(decimal.NewFromFloat(s.RewardPoints.PointValue)).
			InexactFloat64()
		if c > 0 {
			return &c
		}
	}
	return nil
}

func genericOnline(o *OtherEcommerce) *RewardSection {
	if o == nil {
		return nil
	}
	return o.GenericOnlineShopping
}

func supermarkets(o *OfflineRetail) *RewardSection {
	if o == nil {
		return nil
	}
	return o.Supermarkets
}

func genericRetail(o *OfflineRetail) *RewardSection {
	if o == nil {
		return nil
	}
	return o.GenericRetail
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
