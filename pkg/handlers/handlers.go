package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/ledger"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/pix"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/respond"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/wallets"
	appmiddleware "github.com/chris/pix-wallet-ledger/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ApiHandler implements the generated server interface by composing the
// per-resource handlers.
type ApiHandler struct {
	*wallets.WalletsHandler
	*ledger.LedgerHandler
	*rounds.RoundsHandler
	*pix.PixHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(w *wallets.WalletsHandler, l *ledger.LedgerHandler, r *rounds.RoundsHandler, p *pix.PixHandler) *ApiHandler {
	return &ApiHandler{
		WalletsHandler: w,
		LedgerHandler:  l,
		RoundsHandler:  r,
		PixHandler:     p,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// NewRouter mounts the API and, when ws is non-nil, the local websocket
// endpoint at /ws.
func NewRouter(h api.ServerInterface, ws http.Handler, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmiddleware.NewStructuredLogger(logger))
	router.Use(middleware.Recoverer)

	if ws != nil {
		router.Handle("/ws", ws)
	}

	api.HandlerWithOptions(h, api.ChiServerOptions{
		BaseRouter: router,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			respond.BadRequest(w, err.Error())
		},
	})
	return router
}
