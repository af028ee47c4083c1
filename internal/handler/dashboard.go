package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
)

// DashboardHandler exposes the admin dashboard: a one-shot snapshot for the
// initial page load and a websocket stream that pushes a fresh full snapshot
// after every mutation.
type DashboardHandler struct {
	Hub *dashboard.Hub
}

func NewDashboardHandler(hub *dashboard.Hub) *DashboardHandler {
	return &DashboardHandler{Hub: hub}
}

// Snapshot returns the current aggregate counts.
func (h *DashboardHandler) Snapshot(c echo.Context) error {
	stats, err := h.Hub.Latest(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

// Stream upgrades to a websocket and forwards every snapshot the hub
// publishes until the client goes away. The subscription channel is closed
// by Unsubscribe, which ends the range loop.
func (h *DashboardHandler) Stream(c echo.Context) error {
	websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()

		ch := h.Hub.Subscribe()
		defer h.Hub.Unsubscribe(ch)

		// A read pump whose only job is noticing the disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			var discard string
			for {
				if err := websocket.Message.Receive(conn, &discard); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case stats, ok := <-ch:
				if !ok {
					return
				}
				if err := websocket.JSON.Send(conn, stats); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}
