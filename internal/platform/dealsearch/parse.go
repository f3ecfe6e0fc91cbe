package dealsearch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

type rawDeal struct {
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	HotelName   string          `json:"hotelName"`
	Provider    string          `json:"provider"`
	Price       json.RawMessage `json:"price"`
	Currency    string          `json:"currency"`
	Rating      json.RawMessage `json:"rating"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
}

// parseDeals extracts the JSON array from a model answer, which may be wrapped in
// prose or a code fence, and normalizes each entry.
func parseDeals(content, currency string) ([]budget.DealOption, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end < start {
		return nil, fmt.Errorf("invalid deal search response: no JSON array in %q", truncate(content, 200))
	}

	var raw []rawDeal
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse deal search response: %w", err)
	}

	deals := make([]budget.DealOption, 0, len(raw))
	for _, r := range raw {
		deals = append(deals, r.normalize(currency))
	}
	return deals, nil
}

func (r rawDeal) normalize(currency string) budget.DealOption {
	title := firstNonEmpty(r.Title, r.Name, r.HotelName, "Deal Option")
	provider := firstNonEmpty(r.Provider, "Provider")
	dealCurrency := firstNonEmpty(r.Currency, currency)

	return budget.DealOption{
		Title:       title,
		Provider:    provider,
		Price:       parsePrice(r.Price),
		Currency:    dealCurrency,
		Rating:      parsePrice(r.Rating),
		URL:         r.URL,
		Description: r.Description,
	}
}

// parsePrice accepts 120, "120", "$1,200.50" and {"amount"|"low"|"high": 120}.
// Anything else is 0.
func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, s)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return v
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"amount", "low", "high"} {
			if v, ok := obj[key]; ok {
				if p := parsePrice(v); p != 0 {
					return p
				}
			}
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
