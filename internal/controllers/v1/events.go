package v1

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/events"
	"github.com/orcamento-aberto/backend/internal/httputil"
)

// broker distributes change events to connected SSE clients. All
// handlers of this package publish to it after a successful write.
var broker = events.NewBroker()

// RegisterEventRoutes registers the routes for the event stream with
// the RouterGroup that is passed.
func RegisterEventRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", GetEvents)
}

// @Summary		Event stream
// @Description	Streams change events as Server-Sent Events. Each event names the type of change, the fiscal year and the affected resource IDs so clients can refresh the views they show.
// @Tags			Events
// @Produce		text/event-stream
// @Success		200
// @Router			/v1/events [get]
func GetEvents(c *gin.Context) {
	ch, unsubscribe := broker.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}

			c.SSEvent(string(event.Type), event)
			return true

		case <-c.Request.Context().Done():
			return false
		}
	})
}
