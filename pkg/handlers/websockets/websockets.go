package websockets

import (
	"log/slog"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/websockets"
	"github.com/gorilla/websocket"
)

// Handler upgrades balance-push connections and registers them with the hub.
type Handler struct {
	connManager websockets.ConnectionManager
	logger      *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(connManager websockets.ConnectionManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		connManager: connManager,
		logger:      logger.With("component", "websocket_handler"),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all connections by default for local development.
		return true
	},
}

// ServeHTTP handles GET /ws?userId=... and keeps the connection registered
// until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	connectionID, err := h.connManager.AddConnection(ctx, userID, conn)
	if err != nil {
		h.logger.Error("failed to register connection", "user_id", userID, "error", err)
		return
	}
	h.logger.Info("client connected", "connectionId", connectionID, "user_id", userID)

	defer func() {
		h.logger.Info("client disconnected", "connectionId", connectionID, "user_id", userID)
		if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
			h.logger.Error("failed to remove connection", "connectionId", connectionID, "error", err)
		}
	}()

	// Clients do not send anything. Reading is how a close is detected.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("unexpected close error", "error", err)
			}
			break
		}
	}
}
