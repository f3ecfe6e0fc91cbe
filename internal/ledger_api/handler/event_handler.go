package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

const defaultHeartbeat = 15 * time.Second

// EventHandler streams ledger mutations as server-sent events
type EventHandler struct {
	source    service.EventSource
	buffer    int
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewEventHandler creates a new event handler. buffer is the per-client queue size.
func NewEventHandler(logger *slog.Logger, source service.EventSource, buffer int) *EventHandler {
	return &EventHandler{
		source:    source,
		buffer:    buffer,
		heartbeat: defaultHeartbeat,
		logger:    logger,
	}
}

// Stream sends the segment's item and budget events plus payment method events,
// which are not segment scoped. Events dropped for a slow client are not replayed.
func (h *EventHandler) Stream(c *gin.Context) {
	segmentID := c.Param("segmentId")
	events, cancel := h.source.Subscribe(h.buffer)
	defer cancel()

	// The server write timeout would otherwise end every stream.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("Could not clear write deadline for event stream", "error", err)
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	h.logger.Info("Event stream opened", "segment_id", segmentID)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			if evt.SegmentID != "" && evt.SegmentID != segmentID {
				return true
			}
			c.SSEvent(string(evt.Kind), evt)
			return true
		case at := <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": at.UTC()})
			return true
		}
	})
	h.logger.Info("Event stream closed", "segment_id", segmentID)
}
