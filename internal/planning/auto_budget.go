// Package planning fills a segment's cart from a freshly generated itinerary.
package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/platform/dealsearch"
)

// PreferenceCheapest is the only budget preference that triggers auto-budgeting.
const PreferenceCheapest = "cheapest"

const dateLayout = "2006-01-02"

// DealFinder searches priced options for a query.
type DealFinder interface {
	FindDeals(ctx context.Context, q dealsearch.Query) ([]budget.DealOption, error)
}

// Ledger is the subset of the ledger store auto-budgeting writes to.
type Ledger interface {
	BaseCurrency() string
	AddItemUnique(item budget.Item) (budget.Item, error)
}

// Plan is the generated itinerary handed over by the planner.
type Plan struct {
	BudgetPreference string                `json:"budgetPreference"`
	Activities       []budget.ScheduleItem `json:"activities"`
}

// Leg names the part of the trip a deal was searched for.
type Leg string

const (
	LegFlight Leg = "flight"
	LegHotel  Leg = "hotel"
)

// LegFailure records a leg whose deal search failed.
type LegFailure struct {
	Leg   Leg    `json:"leg"`
	Error string `json:"error"`
}

// Result lists what auto-budgeting did.
type Result struct {
	Added    []budget.Item `json:"added"`
	Skipped  []budget.Item `json:"skipped"`
	Failures []LegFailure  `json:"failures,omitempty"`
}

// AutoBudgeter adds the cheapest flight and hotel for a plan.
type AutoBudgeter struct {
	ledger Ledger
	finder DealFinder
	now    func() time.Time
	logger *slog.Logger
}

// NewAutoBudgeter creates an AutoBudgeter. A nil finder makes Apply return
// dealsearch.ErrDealSearchUnavailable.
func NewAutoBudgeter(logger *slog.Logger, ledger Ledger, finder DealFinder) *AutoBudgeter {
	return &AutoBudgeter{
		ledger: ledger,
		finder: finder,
		now:    time.Now,
		logger: logger.With("component", "auto_budget"),
	}
}

type leg struct {
	name   Leg
	source budget.ScheduleItem
	query  dealsearch.Query
}

// Apply searches deals for the plan's first flight and first dated hotel, and adds
// the cheapest option of each to the segment unless an identical item exists.
// A failed search for one leg does not stop the other. Deals with a negative
// price are never picked. A segment being checked out stops the run with
// budget.ErrCheckoutInProgress.
func (a *AutoBudgeter) Apply(ctx context.Context, segmentID string, plan Plan) (Result, error) {
	result := Result{Added: []budget.Item{}, Skipped: []budget.Item{}}
	if plan.BudgetPreference != PreferenceCheapest {
		return result, nil
	}
	if a.finder == nil {
		return result, dealsearch.ErrDealSearchUnavailable
	}

	logger := a.logger.With("segment_id", segmentID)
	currency := a.ledger.BaseCurrency()

	for _, l := range selectLegs(plan.Activities, currency) {
		deals, err := a.finder.FindDeals(ctx, l.query)
		if err != nil {
			logger.Warn("Deal search failed", "leg", l.name, "error", err)
			result.Failures = append(result.Failures, LegFailure{Leg: l.name, Error: err.Error()})
			continue
		}

		cheapest, ok := budget.CheapestDeal(deals)
		if !ok {
			logger.Info("No deals found", "leg", l.name, "query", l.query.Text)
			continue
		}
		if cheapest.Currency == "" {
			cheapest.Currency = currency
		}

		item := budget.BuildItemFromDeal(cheapest, l.source, segmentID, true, a.now(), nil)
		added, err := a.ledger.AddItemUnique(item)
		if errors.Is(err, budget.ErrDuplicateItem) {
			logger.Info("Cheapest option already budgeted", "leg", l.name, "title", item.Title)
			result.Skipped = append(result.Skipped, item)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to add %s deal to segment %s: %w", l.name, segmentID, err)
		}
		logger.Info("Auto-budgeted cheapest option", "leg", l.name, "item_id", added.ID, "amount", added.Amount)
		result.Added = append(result.Added, added)
	}

	return result, nil
}

func selectLegs(activities []budget.ScheduleItem, currency string) []leg {
	var legs []leg

	for _, act := range activities {
		t := strings.ToLower(act.Type)
		if !strings.Contains(t, "flight") && t != "transport" {
			continue
		}
		text := act.SearchQuery()
		if text == "" {
			text = "cheap flight " + act.Activity
		}
		legs = append(legs, leg{
			name:   LegFlight,
			source: act,
			query:  dealsearch.Query{Text: text, Date: act.Date, Currency: currency},
		})
		break
	}

	for _, act := range activities {
		if strings.ToLower(act.Type) != "hotel" || act.Date == "" {
			continue
		}
		legs = append(legs, leg{
			name:   LegHotel,
			source: act,
			query: dealsearch.Query{
				Text:     "cheap hotel " + act.Location + " checkin " + act.Date,
				Date:     act.Date,
				EndDate:  nextDay(act.Date),
				Location: act.Location,
				Currency: currency,
			},
		})
		break
	}

	return legs
}

func nextDay(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format(dateLayout)
}
