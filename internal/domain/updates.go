package domain

type UpdatesStatus string

const (
	UpdatesAvailable   UpdatesStatus = "available"
	UpdatesUnavailable UpdatesStatus = "unavailable"
)

type UpdateSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// CardUpdates is the best-effort "latest news" about a card.
type CardUpdates struct {
	CardID    string         `json:"card_id"`
	Status    UpdatesStatus  `json:"status"`
	Text      string         `json:"text"`
	Sources   []UpdateSource `json:"sources"`
	FetchedAt string         `json:"fetched_at"`
}
