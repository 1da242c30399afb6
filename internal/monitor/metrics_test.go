package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("Gauges and counters track updates", func(t *testing.T) {
		// Given: fresh metrics
		m := NewMetrics()

		// When: the registry reports activity
		m.SetActiveRooms(3)
		m.IncConnections()
		m.IncConnections()
		m.DecConnections()
		m.IncGamesFinished("win")
		m.IncGamesFinished("win")
		m.IncGamesFinished("draw")
		m.IncEventsReceived("move")

		// Then: the collectors hold the reported values
		assert.InDelta(t, 3, testutil.ToFloat64(m.ActiveRooms), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.OnlineConnections), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(m.GamesFinished.WithLabelValues("win")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.GamesFinished.WithLabelValues("draw")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.EventsReceived.WithLabelValues("move")), 0)
	})

	t.Run("Two instances do not collide", func(t *testing.T) {
		require.NotPanics(t, func() {
			NewMetrics()
			NewMetrics()
		})
	})

	t.Run("Handler serves the registry", func(t *testing.T) {
		// Given: metrics with one active room
		m := NewMetrics()
		m.SetActiveRooms(1)

		// When: scraping the handler
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		// Then: the gauge is exposed
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "tictactoe_active_rooms 1")
	})
}
