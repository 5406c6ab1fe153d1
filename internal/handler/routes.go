package handler

import (
	"net/http"

	"github.com/pkarip/imagewall/internal/domain"
	"github.com/pkarip/imagewall/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	gallery *service.GalleryService,
	assets domain.AssetStore,
	limiter *service.RateLimiter,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	galleryHandler := NewGalleryHandler(gallery)
	assetHandler := NewAssetHandler(assets)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /auth/signup", RateLimit(limiter, authHandler.HandleSignup))
	mux.HandleFunc("POST /auth/verify-otp", RateLimit(limiter, authHandler.HandleVerifyOTP))
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /auth/me", protected(authHandler.HandleMe))
	mux.Handle("PUT /auth/password", protected(authHandler.HandleUpdatePassword))

	mux.Handle("POST /images/upload", protected(galleryHandler.HandleUpload))
	mux.Handle("GET /images", protected(galleryHandler.HandleList))
	mux.Handle("PUT /images/{id}/title", protected(galleryHandler.HandleEditTitle))
	mux.Handle("PUT /images/{id}", protected(galleryHandler.HandleReplace))
	mux.Handle("DELETE /images/{id}", protected(galleryHandler.HandleDelete))
	mux.Handle("POST /images/reorder", protected(galleryHandler.HandleReorder))

	mux.HandleFunc("GET /assets/{handle}", assetHandler.HandleServe)
}
