package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/security"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

// Deps are the long lived services the HTTP layer is built from.
type Deps struct {
	Config         *config.AppConfig
	AuthService    *security.AuthService
	MFAService     *services.MFAService
	PriceService   services.PriceService
	FXService      services.ExchangeRateService
	BoardService   *services.BoardService
	Calendar       *services.CalendarService
	CalendarTokens CalendarDisconnector
	StatsCache     *cache.Cache
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil || database.DB.PingContext(r.Context()) != nil {
		logger.FromContext(r.Context()).Error("Health check failed: database unavailable")
		utils.SendJSONError(w, "database unavailable", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) http.Handler {
	if d.StatsCache == nil {
		d.StatsCache = cache.New(adminStatsTTL, 2*adminStatsTTL)
	}

	authHandler := NewAuthHandler(d.AuthService, d.MFAService)
	salesHandler := NewSalesHandler()
	loanHandler := NewCarLoanHandler()
	stockHandler := NewStockHandler(d.PriceService, d.FXService, d.Config.ReportingCurrency)
	boardHandler := NewBoardHandler(d.BoardService)
	calendarHandler := NewCalendarHandler(d.Calendar, d.CalendarTokens, d.Config.FrontendBaseURL)
	adminHandler := NewAdminHandler(d.StatsCache, d.PriceService, d.FXService, d.BoardService)
	requireAuth := AuthMiddleware(d.AuthService)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(ProxyHeadersMiddleware)
	r.Use(CORSMiddleware(d.Config.AllowedOrigins))
	r.Use(RateLimitMiddleware(d.Config.RateLimitEvery, d.Config.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Homedash backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", healthHandler)
		r.Get("/auth/csrf", GetCSRFToken)
		r.Get("/calendar/callback", calendarHandler.HandleCallback)

		r.Group(func(r chi.Router) {
			r.Use(CSRFMiddleware)
			r.Post("/auth/login", authHandler.LoginUserHandler)
			r.Post("/auth/refresh", authHandler.RefreshTokenHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(CSRFMiddleware)
			r.Use(requireAuth)

			r.Post("/auth/logout", authHandler.LogoutUserHandler)
			r.Get("/auth/me", authHandler.HandleMe)
			r.Get("/user/mfa/setup", authHandler.HandleSetupMFA)
			r.Post("/user/mfa/enable", authHandler.HandleActivateMFA)

			r.Get("/sales", salesHandler.HandleListSales)
			r.Post("/sales", salesHandler.HandleCreateSale)
			r.Put("/sales/{id}", salesHandler.HandleUpdateSale)
			r.Delete("/sales/{id}", salesHandler.HandleDeleteSale)

			r.Get("/car-loans", loanHandler.HandleListLoans)
			r.Post("/car-loans", loanHandler.HandleCreateLoan)
			r.Put("/car-loans/{id}", loanHandler.HandleUpdateLoan)
			r.Delete("/car-loans/{id}", loanHandler.HandleDeleteLoan)
			r.Get("/car-loans/{id}/payments", loanHandler.HandleListPayments)
			r.Post("/car-loans/{id}/payments", loanHandler.HandleCreatePayment)
			r.Get("/car-loans/{id}/schedule", loanHandler.HandleGetSchedule)

			r.Get("/stocks/portfolio", stockHandler.HandleGetPortfolio)
			r.Get("/stocks/prices", stockHandler.HandleGetPrices)
			r.Get("/stocks/exchange-rate", stockHandler.HandleGetExchangeRate)
			r.Get("/stocks/holdings", stockHandler.HandleListHoldings)
			r.Post("/stocks/holdings", stockHandler.HandleCreateHolding)
			r.Put("/stocks/holdings/{id}", stockHandler.HandleUpdateHolding)
			r.Delete("/stocks/holdings/{id}", stockHandler.HandleDeleteHolding)

			r.Get("/board", boardHandler.HandleGetBoard)
			r.Post("/board/cards", boardHandler.HandleAddCard)
			r.Post("/board/moves", boardHandler.HandleMoveCard)
			r.Post("/board/reorder", boardHandler.HandleReorder)
			r.Post("/board/drag", boardHandler.HandleDrag)
			r.Put("/board/columns/{id}/title", boardHandler.HandleRenameColumn)
			r.Post("/board/reset", boardHandler.HandleReset)

			r.Get("/calendar/connect", calendarHandler.HandleConnect)
			r.Get("/calendar/events", calendarHandler.HandleGetEvents)
			r.Delete("/calendar", calendarHandler.HandleDisconnect)

			r.Group(func(r chi.Router) {
				r.Use(AdminMiddleware)
				r.Get("/admin/users", adminHandler.HandleListUsers)
				r.Post("/admin/users", adminHandler.HandleCreateUser)
				r.Put("/admin/users/{id}", adminHandler.HandleUpdateUser)
				r.Delete("/admin/users/{id}", adminHandler.HandleDeleteUser)
				r.Get("/admin/stats", adminHandler.HandleGetAdminStats)
				r.Post("/admin/stats/clear-cache", adminHandler.HandleClearCache)
			})
		})
	})

	return r
}
