package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"storefront/store"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingCatalog struct{}

func (failingCatalog) All(context.Context, string) ([]models.Product, error) {
	return nil, errors.New("boom")
}

func dial(t *testing.T, catalog Catalog) *websocket.Conn {
	t.Helper()
	return dialHandler(t, NewHandler(catalog, zap.NewNop()))
}

func dialHandler(t *testing.T, h http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Event: event, Data: raw}))
}

func TestSortProducts(t *testing.T) {
	catalog := services.NewCatalogService(store.NewMemoryProductStore(), nil, nil)
	for i, price := range []float64{20, 5, 12} {
		p := price
		_, err := catalog.Add(context.Background(), models.ProductInput{
			Title:       "Item",
			Description: "desc",
			Price:       &p,
			Code:        string(rune('a' + i)),
			Stock:       new(int),
			Category:    "misc",
		})
		require.NoError(t, err)
	}
	conn := dial(t, catalog)

	tests := []struct {
		sort string
		want []float64
	}{
		{"asc", []float64{5, 12, 20}},
		{"desc", []float64{20, 12, 5}},
		{"other", []float64{20, 5, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			send(t, conn, EventSortProducts, map[string]string{"sort": tt.sort})

			var resp struct {
				Event string           `json:"event"`
				Data  []models.Product `json:"data"`
			}
			require.NoError(t, conn.ReadJSON(&resp))
			assert.Equal(t, EventUpdateProducts, resp.Event)

			prices := make([]float64, 0, len(resp.Data))
			for _, p := range resp.Data {
				prices = append(prices, p.Price)
			}
			assert.Equal(t, tt.want, prices)
		})
	}
}

func TestSortProductsBehindRequestMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	catalog := services.NewCatalogService(store.NewMemoryProductStore(), nil, nil)
	h := middleware.RequestID(middleware.Logger(zap.New(core))(NewHandler(catalog, zap.NewNop())))
	conn := dialHandler(t, h)

	send(t, conn, EventSortProducts, map[string]string{"sort": "desc"})

	var resp Message
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, EventUpdateProducts, resp.Event)
	assert.JSONEq(t, `[]`, string(resp.Data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		for _, e := range logs.FilterMessage("request").All() {
			if e.ContextMap()["status"] == int64(http.StatusSwitchingProtocols) {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestUnknownEventIsIgnored(t *testing.T) {
	catalog := services.NewCatalogService(store.NewMemoryProductStore(), nil, nil)
	conn := dial(t, catalog)

	send(t, conn, "somethingElse", map[string]string{})
	send(t, conn, EventSortProducts, map[string]string{"sort": "asc"})

	var resp struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, EventUpdateProducts, resp.Event)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestSortProductsFailure(t *testing.T) {
	conn := dial(t, failingCatalog{})

	send(t, conn, EventSortProducts, map[string]string{"sort": "asc"})

	var resp struct {
		Event string    `json:"event"`
		Data  errorData `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, EventUpdateProducts, resp.Event)
	assert.Equal(t, "could not load products", resp.Data.Error)
}
