package main

import (
	"context"
	"log"

	"flint/internal/domain/account"
	"flint/internal/domain/marketdata"
	"flint/internal/domain/notification"
	"flint/internal/domain/payment"
	"flint/internal/domain/portfolio"
	accountsync "flint/internal/domain/sync"
	"flint/internal/domain/trade"
	"flint/internal/domain/user"
	"flint/internal/domain/watchlist"
	"flint/internal/infrastructure/alpaca"
	"flint/internal/infrastructure/alphavantage"
	"flint/internal/infrastructure/crypto"
	"flint/internal/infrastructure/firebase"
	"flint/internal/infrastructure/polygon"
	"flint/internal/infrastructure/postgres"
	"flint/internal/infrastructure/rediscache"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/infrastructure/teller"
	httphandlers "flint/internal/interfaces/http"
	"flint/internal/shared/auth"
	"flint/internal/shared/config"
	"flint/internal/shared/retry"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB          *postgres.DB
	CandleCache *rediscache.CandleCache

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	AccountHandler      *httphandlers.AccountHandler
	DashboardHandler    *httphandlers.DashboardHandler
	MarketDataHandler   *httphandlers.MarketDataHandler
	PortfolioHandler    *httphandlers.PortfolioHandler
	TellerHandler       *httphandlers.TellerHandler
	SnapTradeHandler    *httphandlers.SnapTradeHandler
	TradeHandler        *httphandlers.TradeHandler
	WatchlistHandler    *httphandlers.WatchlistHandler
	AdminHandler        *httphandlers.AdminHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// Services used by the scheduler job provider
	UserService    *user.Service
	AccountService *account.Service
	SyncService    *accountsync.Service
	TradeService   *trade.Service
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize encryptor
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db, encryptor)
	tradeRepo := postgres.NewTradeRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	watchlistRepo := postgres.NewWatchlistRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	// Initialize provider clients
	tellerClient, err := teller.NewClient(teller.Config{
		BaseURL:       cfg.Teller.BaseURL,
		ApplicationID: cfg.Teller.ApplicationID,
		Environment:   cfg.Teller.Environment,
		CertPath:      cfg.Teller.CertPath,
		KeyPath:       cfg.Teller.KeyPath,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	snapTradeClient := snaptrade.NewClient(cfg.SnapTrade.BaseURL, cfg.SnapTrade.ClientID, cfg.SnapTrade.ConsumerKey)
	polygonClient := polygon.NewClient(cfg.MarketData.PolygonAPIKey)
	alpacaClient := alpaca.NewClient(cfg.MarketData.AlpacaKeyID, cfg.MarketData.AlpacaSecretKey)
	alphaVantageClient := alphavantage.NewClient(cfg.MarketData.AlphaVantageKey)

	// Redis is optional; without it candle lookups go straight to the providers.
	var candleCache *rediscache.CandleCache
	cache, err := rediscache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Redis unavailable, candle caching disabled: %v", err)
	} else {
		candleCache = cache
	}

	// Market data provider chain, tried in order. The static fallback table
	// sits behind all of them inside the service.
	marketDataService := marketdata.NewService(
		cfg.MarketData.QuoteTTL,
		[]marketdata.Provider{
			snaptrade.NewQuoteProvider(snapTradeClient),
			polygonClient,
			alpacaClient,
			alphaVantageClient,
		},
		marketdata.WithCandleProviders(
			candleCacheOrNil(candleCache),
			cfg.MarketData.CandleCacheTTL,
			polygonClient,
			alphaVantageClient,
		),
	)

	// Firebase is optional; without it notifications are logged and dropped.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, deviceTokenRepo.Deactivate)
		if err != nil {
			log.Printf("Warning: Firebase initialization failed, push notifications disabled: %v", err)
		} else {
			messenger = fcm
		}
	}

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize domain services
	policy := retry.Policy{
		Interval:    cfg.Polling.Interval,
		MaxAttempts: cfg.Polling.MaxAttempts,
		Timeout:     cfg.Polling.Timeout,
	}
	accountService := account.NewService(accountRepo)
	userService := user.NewService(userRepo, snapTradeClient, jwt)
	notificationService := notification.NewService(deviceTokenRepo, messenger)
	syncService := accountsync.NewService(accountService, tellerClient, snapTradeClient)
	portfolioService := portfolio.NewService(snapTradeClient, marketDataService)
	watchlistService := watchlist.NewService(watchlistRepo, marketDataService)
	tradeService := trade.NewService(tradeRepo, snapTradeClient, notificationService, policy)
	paymentService := payment.NewService(paymentRepo, accountService, tellerClient, notificationService, policy)

	// Initialize handlers
	return &Dependencies{
		DB:                  db,
		CandleCache:         candleCache,
		AuthHandler:         httphandlers.NewAuthHandler(userService),
		AccountHandler:      httphandlers.NewAccountHandler(accountService),
		DashboardHandler:    httphandlers.NewDashboardHandler(accountService, portfolioService, watchlistService, userService),
		MarketDataHandler:   httphandlers.NewMarketDataHandler(marketDataService, userService, accountService),
		PortfolioHandler:    httphandlers.NewPortfolioHandler(portfolioService, userService),
		TellerHandler:       httphandlers.NewTellerHandler(tellerClient, syncService, paymentService, accountService),
		SnapTradeHandler:    httphandlers.NewSnapTradeHandler(userService, syncService, snapTradeClient),
		TradeHandler:        httphandlers.NewTradeHandler(tradeService, userService),
		WatchlistHandler:    httphandlers.NewWatchlistHandler(watchlistService),
		AdminHandler:        httphandlers.NewAdminHandler(userService),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		JWT:                 jwt,
		UserService:         userService,
		AccountService:      accountService,
		SyncService:         syncService,
		TradeService:        tradeService,
	}, nil
}

// candleCacheOrNil avoids handing the market data service a non-nil
// interface wrapping a nil pointer.
func candleCacheOrNil(c *rediscache.CandleCache) marketdata.CandleCache {
	if c == nil {
		return nil
	}
	return c
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.CandleCache != nil {
		d.CandleCache.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
