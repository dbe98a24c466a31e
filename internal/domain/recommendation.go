package domain

// SavingsBreakdown is one line of a card's savings. Bonus lines carry a label
// in Category with zero spend and rate.
type SavingsBreakdown struct {
	Category string   `json:"category"`
	Spend    int64    `json:"spend"`
	Saved    float64  `json:"saved"`
	Rate     float64  `json:"rate"`
	Cap      *float64 `json:"cap,omitempty"`
	IsCapped bool     `json:"isCapped,omitempty"`
	IsBonus  bool     `json:"isBonus,omitempty"`
}

type RecommendationResult struct {
	Card             Card               `json:"card"`
	MonthlySavings   float64            `json:"monthlySavings"`
	AnnualSavings    float64            `json:"annualSavings"`
	NetAnnualSavings float64            `json:"netAnnualSavings"`
	IsFeeWaived      bool               `json:"isFeeWaived"`
	AppliedFee       float64            `json:"appliedFee"`
	Breakdown        []SavingsBreakdown `json:"breakdown"`
}

type RecommendationMeta struct {
	CacheHit       bool   `json:"cache_hit"`
	CatalogVersion uint64 `json:"catalog_version"`
	GeneratedAt    string `json:"generated_at"`
	TotalCount     int    `json:"total_count"`
}

type Recommendations struct {
	Results        []RecommendationResult
	CatalogVersion uint64
	CacheHit       bool
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchProfileResult struct {
	Index           int                    `json:"index"`
	Recommendations []RecommendationResult `json:"recommendations,omitempty"`
	Status          BatchStatus            `json:"status"`
	Error           string                 `json:"error,omitempty"`
	Message         string                 `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	CatalogVersion uint64 `json:"catalog_version"`
	GeneratedAt    string `json:"generated_at"`
}

type BatchResponse struct {
	Limit    int                  `json:"limit"`
	Results  []BatchProfileResult `json:"results"`
	Summary  BatchSummary         `json:"summary"`
	Metadata BatchMeta            `json:"metadata"`
}
