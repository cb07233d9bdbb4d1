package main

import (
	"log"
	"net/http"

	"contas/internal/shared/config"
	"contas/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", handleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/users/me", authMiddleware(http.HandlerFunc(deps.AuthHandler.HandleMe)))

	mux.Handle("/api/cards", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleCards)))
	mux.Handle("/api/cards/{id}", authMiddleware(http.HandlerFunc(deps.CardHandler.HandleCardByID)))
	mux.Handle("/api/cards/{id}/charges", authMiddleware(http.HandlerFunc(deps.ChargeHandler.HandleCardCharges)))
	mux.Handle("/api/cards/{id}/invoice", authMiddleware(http.HandlerFunc(deps.ChargeHandler.HandleInvoice)))
	mux.Handle("/api/charges/{id}", authMiddleware(http.HandlerFunc(deps.ChargeHandler.HandleChargeByID)))
	mux.Handle("/api/invoice-period", authMiddleware(http.HandlerFunc(deps.ChargeHandler.HandleInvoicePeriod)))

	mux.Handle("/api/bills", authMiddleware(http.HandlerFunc(deps.BillHandler.HandleBills)))
	mux.Handle("/api/bills/{id}", authMiddleware(http.HandlerFunc(deps.BillHandler.HandleBillByID)))
	mux.Handle("/api/bills/{id}/pay", authMiddleware(http.HandlerFunc(deps.BillHandler.HandlePay)))
	mux.Handle("/api/bills/{id}/unpay", authMiddleware(http.HandlerFunc(deps.BillHandler.HandleUnpay)))

	mux.Handle("/api/categories", authMiddleware(http.HandlerFunc(deps.CategoryHandler.HandleCategories)))
	mux.Handle("/api/categories/{id}", authMiddleware(http.HandlerFunc(deps.CategoryHandler.HandleCategoryByID)))

	mux.Handle("/api/chat/purchase", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandlePurchase)))

	mux.Handle("/api/notifications/register-device", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleRegisterDevice)))
	mux.Handle("/api/notifications/preferences", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandlePreferences)))
	mux.Handle("/api/notifications", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleListNotifications)))
	mux.Handle("/api/notifications/{id}/opened", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleMarkOpened)))

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
