package domain

import "time"

// DefaultTitle is used when a broadcast request carries no title.
const DefaultTitle = "Alert"

// Reasons reported when a broadcast addressed zero tokens.
const (
	ReasonNoTokens = "no_tokens"
	ReasonNoFCMKey = "no_fcm_key"
)

type Subscription struct {
	Token     string    `json:"token"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

type AlertRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ResolvedTitle falls back to DefaultTitle for empty titles; the body is
// allowed to stay empty.
func (request AlertRequest) ResolvedTitle() string {
	if request.Title == "" {
		return DefaultTitle
	}
	return request.Title
}

type BroadcastResult struct {
	Sent    int              `json:"sent"`
	Results []map[string]any `json:"results,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

func NormalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
