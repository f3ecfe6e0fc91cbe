// Package dealsearch looks up bookable options (flights, hotels, activities) with
// approximate prices by asking a GigaChat model.
package dealsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Role1776/gigago"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// ErrDealSearchUnavailable is returned when no deal search backend is configured.
var ErrDealSearchUnavailable = errors.New("deal search is not configured")

// Query describes what to search for.
type Query struct {
	Text     string
	Date     string
	EndDate  string
	Location string
	Currency string
}

// Completer sends a single prompt and returns the model's text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemInstruction = `You are a travel deal researcher. You answer with a raw JSON array of
bookable options and nothing else. Prices are approximate totals in the requested currency.`

type gigaChatCompleter struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
}

func (c *gigaChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from deal search model")
	}
	return resp.Choices[0].Message.Content, nil
}

// GigaChatFinder implements deal search on top of a Completer.
type GigaChatFinder struct {
	completer Completer
	timeout   time.Duration
	closeFn   func()
	logger    *slog.Logger
}

// NewGigaChatFinder connects to GigaChat with the configured credentials.
func NewGigaChatFinder(ctx context.Context, logger *slog.Logger, cfg config.DealSearchConfig) (*GigaChatFinder, error) {
	if !cfg.Enabled() {
		return nil, ErrDealSearchUnavailable
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.2

	f := NewFinder(logger, &gigaChatCompleter{client: client, model: model}, cfg.Timeout)
	f.closeFn = func() { client.Close() }
	return f, nil
}

// NewFinder builds a finder around any Completer.
func NewFinder(logger *slog.Logger, completer Completer, timeout time.Duration) *GigaChatFinder {
	return &GigaChatFinder{
		completer: completer,
		timeout:   timeout,
		logger:    logger.With("component", "deal_search"),
	}
}

// FindDeals returns the options the model proposes for q, normalized.
func (f *GigaChatFinder) FindDeals(ctx context.Context, q Query) ([]budget.DealOption, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	content, err := f.completer.Complete(ctx, buildPrompt(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search deals for %q: %w", q.Text, err)
	}

	deals, err := parseDeals(content, q.Currency)
	if err != nil {
		f.logger.Warn("Unparseable deal search answer", "query", q.Text, "error", err)
		return nil, err
	}

	f.logger.Info("Deal search completed", "query", q.Text, "count", len(deals))
	return deals, nil
}

// Close releases the GigaChat client.
func (f *GigaChatFinder) Close() {
	if f.closeFn != nil {
		f.closeFn()
	}
}

func buildPrompt(q Query) string {
	currency := q.Currency
	if currency == "" {
		currency = budget.DefaultCurrency
	}
	endDate := q.EndDate
	if endDate == "" {
		endDate = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context: User wants prices for %q.\n", q.Text)
	fmt.Fprintf(&b, "Dates: %s to %s. Location: %s. Currency: %s.\n\n", q.Date, endDate, q.Location, currency)
	b.WriteString("Task: list at least 8 distinct, real options (hotel, flight or activity) with approximate pricing.\n")
	b.WriteString("Output ONLY a raw JSON array, no text before or after it:\n")
	fmt.Fprintf(&b, `[{"title": "Hotel Name", "provider": "Booking.com", "price": 100, "currency": "%s", "rating": 8.0, "description": "Short summary", "url": ""}]`, currency)
	return b.String()
}
