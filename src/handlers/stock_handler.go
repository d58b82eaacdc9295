package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

// maxPriceSymbols bounds a single prices request.
const maxPriceSymbols = 50

type StockHandler struct {
	priceService services.PriceService
	fxService    services.ExchangeRateService
	portfolio    *services.PortfolioService
}

func NewStockHandler(priceService services.PriceService, fxService services.ExchangeRateService, reportingCurrency string) *StockHandler {
	return &StockHandler{
		priceService: priceService,
		fxService:    fxService,
		portfolio:    services.NewPortfolioService(priceService, fxService, reportingCurrency),
	}
}

// HandleGetPortfolio values the user's holdings at current prices in the reporting currency.
func (h *StockHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	holdings, err := model.ListStockHoldings(database.DB, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list stock holdings", "error", err)
		utils.SendJSONError(w, "Failed to load portfolio", http.StatusInternalServerError)
		return
	}
	utils.SendJSONWithETag(w, r, map[string]any{"portfolio": h.portfolio.Value(r.Context(), holdings)})
}

// HandleGetPrices answers ?symbols=A,B with one quote per symbol. Symbols
// without any price are listed under "unavailable".
func (h *StockHandler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if strings.TrimSpace(raw) == "" {
		utils.SendJSONError(w, "symbols query parameter is required", http.StatusBadRequest)
		return
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxPriceSymbols {
		utils.SendJSONError(w, "too many symbols", http.StatusBadRequest)
		return
	}
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		symbol, err := validation.ValidateSymbol(p)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		symbols = append(symbols, symbol)
	}

	quotes, unavailable := h.priceService.GetStockPrices(r.Context(), symbols)
	utils.SendJSON(w, http.StatusOK, map[string]any{
		"prices":      quotes,
		"unavailable": unavailable,
	})
}

func (h *StockHandler) HandleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	from, err := validation.ValidateCurrencyCode(r.URL.Query().Get("from"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	to := h.portfolio.ReportingCurrency()
	if q := r.URL.Query().Get("to"); q != "" {
		if to, err = validation.ValidateCurrencyCode(q); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	fx, err := h.fxService.GetExchangeRate(r.Context(), from, to)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Exchange rate unavailable", "from", from, "to", to, "error", err)
		utils.SendJSONError(w, "Exchange rate unavailable", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"rate": fx})
}

type holdingRequest struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Shares      int     `json:"shares"`
	GAK         float64 `json:"gak"`
	GAKCurrency string  `json:"gak_currency"`
	Category    string  `json:"category"`
}

func (req holdingRequest) apply(h *models.StockHolding) error {
	var err error
	if h.Symbol, err = validation.ValidateSymbol(req.Symbol); err != nil {
		return err
	}
	if req.Shares <= 0 {
		return errors.New("shares must be greater than zero")
	}
	h.Shares = req.Shares
	if err = validation.ValidateNonNegativeAmount(req.GAK, "gak"); err != nil {
		return err
	}
	h.GAK = req.GAK
	if h.GAKCurrency, err = validation.ValidateCurrencyCode(req.GAKCurrency); err != nil {
		return err
	}
	if h.Name, err = validation.CleanOptional(req.Name, validation.DefaultMaxStringLength, "name"); err != nil {
		return err
	}
	if h.Category, err = validation.CleanOptional(req.Category, validation.DefaultMaxStringLength, "category"); err != nil {
		return err
	}
	return nil
}

func (h *StockHandler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	holdings, err := model.ListStockHoldings(database.DB, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list stock holdings", "error", err)
		utils.SendJSONError(w, "Failed to load holdings", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"holdings": holdings})
}

func (h *StockHandler) HandleCreateHolding(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req holdingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	holding := &models.StockHolding{UserID: userID}
	if err := req.apply(holding); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.CreateStockHolding(database.DB, holding); err != nil {
		logger.FromContext(r.Context()).Error("Failed to create stock holding", "error", err)
		utils.SendJSONError(w, "Failed to save holding", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{"holding": holding})
}

func (h *StockHandler) HandleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req holdingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	holding, err := model.GetStockHolding(database.DB, userID, id)
	if err != nil {
		sendHoldingLookupError(w, r, err)
		return
	}
	if err := req.apply(holding); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.UpdateStockHolding(database.DB, holding); err != nil {
		sendHoldingLookupError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"holding": holding})
}

func (h *StockHandler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.DeleteStockHolding(database.DB, userID, id); err != nil {
		sendHoldingLookupError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Holding deleted"})
}

func sendHoldingLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		utils.SendJSONError(w, "Holding not found", http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Error("Stock holding query failed", "error", err)
	utils.SendJSONError(w, "Failed to save holding", http.StatusInternalServerError)
}
