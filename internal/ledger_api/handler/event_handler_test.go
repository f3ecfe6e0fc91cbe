package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
)

// closeNotifyRecorder adds the CloseNotifier that gin's streaming requires.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

type scriptedEvents struct {
	events    []ledger.Event
	cancelled bool
}

func (s *scriptedEvents) Subscribe(buffer int) (<-chan ledger.Event, func()) {
	ch := make(chan ledger.Event, len(s.events))
	for _, evt := range s.events {
		ch <- evt
	}
	close(ch)
	return ch, func() { s.cancelled = true }
}

func TestEventHandler_Stream(t *testing.T) {
	item := budget.Item{ID: "item_1", SegmentID: "trip_1", Title: "Flight"}
	other := budget.Item{ID: "item_2", SegmentID: "trip_2", Title: "Hotel"}
	source := &scriptedEvents{events: []ledger.Event{
		{Kind: ledger.EventItemAdded, SegmentID: "trip_1", Item: &item, At: time.Now()},
		{Kind: ledger.EventItemAdded, SegmentID: "trip_2", Item: &other, At: time.Now()},
		{Kind: ledger.EventPaymentMethodSelected, PaymentMethodID: "pm_2", At: time.Now()},
	}}

	h := NewEventHandler(newTestLogger(), source, 8)
	r := setupTestRouter()
	r.GET("/segments/:segmentId/events", h.Stream)

	req, _ := http.NewRequest(http.MethodGet, "/segments/trip_1/events", nil)
	rr := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	r.ServeHTTP(rr, req)

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, "event:item.added")
	assert.Contains(t, body, `"item_1"`)
	assert.NotContains(t, body, `"item_2"`)
	assert.Contains(t, body, "event:payment_method.selected")
	assert.Equal(t, 2, strings.Count(body, "event:"))
	assert.True(t, source.cancelled)
}
