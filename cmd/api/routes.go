package main

import (
	"log"
	"net/http"

	httphandlers "flint/internal/interfaces/http"
	"flint/internal/shared/config"
	"flint/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("/api/users/me", protected(deps.AuthHandler.HandleMe))

	mux.Handle("/api/accounts", protected(deps.AccountHandler.HandleListAccounts))
	mux.Handle("/api/accounts/{id}", protected(deps.AccountHandler.HandleAccountByID))
	mux.Handle("/api/accounts/{id}/transactions", protected(deps.TellerHandler.HandleAccountTransactions))

	mux.Handle("/api/dashboard", protected(deps.DashboardHandler.HandleDashboard))

	mux.Handle("/api/market-data", protected(deps.MarketDataHandler.HandleQuote))
	mux.Handle("/api/market-data/bulk", protected(deps.MarketDataHandler.HandleBulkQuotes))
	mux.Handle("/api/market-data/candles", protected(deps.MarketDataHandler.HandleCandles))

	mux.Handle("/api/portfolio/summary", protected(deps.PortfolioHandler.HandleSummary))
	mux.Handle("/api/portfolio/history", protected(deps.PortfolioHandler.HandleHistory))

	mux.Handle("/api/teller/connect-init", protected(deps.TellerHandler.HandleConnectInit))
	mux.Handle("/api/teller/exchange-token", protected(deps.TellerHandler.HandleExchangeToken))
	mux.Handle("/api/teller/payments", protected(deps.TellerHandler.HandlePayments))
	mux.Handle("/api/teller/payments/context", protected(deps.TellerHandler.HandlePaymentContext))
	mux.Handle("/api/teller/payments/{id}", protected(deps.TellerHandler.HandlePaymentByID))

	mux.Handle("/api/snaptrade/register", protected(deps.SnapTradeHandler.HandleRegister))
	mux.Handle("/api/snaptrade/sync", protected(deps.SnapTradeHandler.HandleSync))
	mux.Handle("/api/snaptrade/accounts", protected(deps.SnapTradeHandler.HandleAccounts))
	mux.Handle("/api/snaptrade/create-fresh-account", protected(deps.SnapTradeHandler.HandleCreateFreshAccount))

	mux.Handle("/api/trades", protected(deps.TradeHandler.HandleOrders))
	mux.Handle("/api/trades/{id}", protected(deps.TradeHandler.HandleOrderByID))

	mux.Handle("/api/watchlist", protected(deps.WatchlistHandler.HandleWatchlist))
	mux.Handle("/api/watchlist/{symbol}", protected(deps.WatchlistHandler.HandleWatchlistSymbol))

	mux.Handle("/api/admin/users", protected(deps.AdminHandler.HandleListUsers))
	mux.Handle("/api/admin/stats", protected(deps.AdminHandler.HandleStats))
	mux.Handle("/api/admin/users/{id}/tier", protected(deps.AdminHandler.HandleSetTier))

	mux.Handle("/api/notifications/register-device", protected(deps.NotificationHandler.HandleRegisterDevice))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
