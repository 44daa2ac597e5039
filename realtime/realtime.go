package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event names exchanged over the socket.
const (
	EventSortProducts   = "sortProducts"
	EventUpdateProducts = "updateProducts"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	requestTimeout = 5 * time.Second
)

// Catalog lists the whole catalog in price order.
type Catalog interface {
	All(ctx context.Context, sortBy string) ([]models.Product, error)
}

// Message is the envelope of every socket frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

type reply struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type errorData struct {
	Error string `json:"error"`
}

// Handler upgrades requests to websockets and answers sort requests on the
// same connection.
type Handler struct {
	catalog  Catalog
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a Handler
func NewHandler(catalog Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("realtime"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	h.logger.Info("client connected", zap.String("remote_addr", r.RemoteAddr))
	defer h.logger.Info("client disconnected", zap.String("remote_addr", r.RemoteAddr))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed message", zap.Error(err))
			continue
		}

		switch msg.Event {
		case EventSortProducts:
			if err := h.sortProducts(r.Context(), conn, msg.Data); err != nil {
				h.logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		default:
			h.logger.Debug("ignoring unknown event", zap.String("event", msg.Event))
		}
	}
}

func (h *Handler) sortProducts(ctx context.Context, conn *websocket.Conn, data json.RawMessage) error {
	var req sortRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			h.logger.Debug("malformed sort request", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out := reply{Event: EventUpdateProducts}
	products, err := h.catalog.All(ctx, req.Sort)
	if err != nil {
		h.logger.Error("sorting products", zap.String("sort", req.Sort), zap.Error(err))
		out.Data = errorData{Error: "could not load products"}
	} else {
		if products == nil {
			products = []models.Product{}
		}
		out.Data = products
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(out)
}
