package ledger

import (
	"context"
	"net/http"
	"strconv"

	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/respond"
	"github.com/chris/pix-wallet-ledger/pkg/mapping"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	maxLimit = 500
	// HeaderHasMore is set when a limit cut off older entries.
	HeaderHasMore = "X-Has-More"
)

// Reader returns a wallet's ledger entries, newest first.
type Reader interface {
	GetLedger(ctx context.Context, walletID string, limit int32) ([]models.LedgerEntry, error)
}

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Ledger Reader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger Reader) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger}
}

// ListLedgerEntries returns the whole history of a wallet, newest first.
// With a limit only the newest entries are returned and HeaderHasMore tells
// the caller whether older ones exist.
func (h *LedgerHandler) ListLedgerEntries(w http.ResponseWriter, r *http.Request, walletId openapi_types.UUID, params api.ListLedgerEntriesParams) {
	var limit int32
	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > maxLimit {
			respond.BadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = int32(*params.Limit)
	}

	fetch := limit
	if limit > 0 {
		// One extra entry tells whether the limit truncated the history.
		fetch = limit + 1
	}
	domainEntries, err := h.Ledger.GetLedger(r.Context(), walletId.String(), fetch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if limit > 0 {
		hasMore := len(domainEntries) > int(limit)
		if hasMore {
			domainEntries = domainEntries[:limit]
		}
		w.Header().Set(HeaderHasMore, strconv.FormatBool(hasMore))
	}

	apiEntries := make([]*api.LedgerEntry, len(domainEntries))
	for i, entry := range domainEntries {
		apiEntries[i] = mapping.ToApiLedgerEntry(&entry)
	}

	respond.JSON(w, http.StatusOK, apiEntries)
}
