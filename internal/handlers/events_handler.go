package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

const defaultHeartbeat = 25 * time.Second

// Subscriber opens a salon-scoped change feed.
type Subscriber interface {
	Subscribe(salonID uuid.UUID, tables ...realtime.Table) *realtime.Subscription
}

type EventsHandler struct {
	bus       Subscriber
	heartbeat time.Duration
}

func NewEventsHandler(bus Subscriber) *EventsHandler {
	return &EventsHandler{bus: bus, heartbeat: defaultHeartbeat}
}

type changeEvent struct {
	realtime.Change
	Invalidates []realtime.View `json:"invalidates"`
}

// Stream sends committed changes as Server-Sent Events. ?tables=a,b narrows
// the feed; no tables means every table.
func (h *EventsHandler) Stream(c *gin.Context) {
	var tables []realtime.Table
	if raw := strings.TrimSpace(c.Query("tables")); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			t, ok := realtime.ParseTable(name)
			if !ok {
				httperr.BadRequest(c, "invalid_table", "Unknown table: "+strings.TrimSpace(name))
				return
			}
			tables = append(tables, t)
		}
	}

	sub := h.bus.Subscribe(middleware.SalonID(c), tables...)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"tables": tables})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ch, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("change", changeEvent{
				Change:      ch,
				Invalidates: realtime.Invalidates(ch.Table),
			})
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}
