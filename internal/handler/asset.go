package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pkarip/imagewall/internal/domain"
)

// AssetHandler serves raw asset bytes from the asset store. Asset URLs are
// embedded in image records and fetched directly by the front-end, so this
// route is public; handles are unguessable.
type AssetHandler struct {
	assets domain.AssetStore
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets domain.AssetStore) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// HandleServe streams the bytes for one asset handle.
// GET /assets/{handle}
func (h *AssetHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		http.NotFound(w, r)
		return
	}

	data, contentType, err := h.assets.Get(r.Context(), handle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("serve asset", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
