package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/processors"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/utils"
)

type SalesHandler struct {
	processor *processors.SalesProcessor
	now       func() time.Time
}

func NewSalesHandler() *SalesHandler {
	return &SalesHandler{processor: processors.NewSalesProcessor(), now: time.Now}
}

type salesItemRequest struct {
	ItemName     string  `json:"item_name"`
	SalePrice    float64 `json:"sale_price"`
	SalePlatform string  `json:"sale_platform"`
	SaleDate     string  `json:"sale_date"`
	Category     string  `json:"category"`
	Condition    string  `json:"condition"`
	SoldFor      string  `json:"sold_for"`
	Description  string  `json:"description"`
}

// apply validates req and copies it onto item. A missing sale date defaults to today.
func (req salesItemRequest) apply(item *models.SalesItem, today time.Time) error {
	var err error
	if item.ItemName, err = validation.CleanRequired(req.ItemName, validation.DefaultMaxStringLength, "item_name"); err != nil {
		return err
	}
	if err = validation.ValidatePositiveAmount(req.SalePrice, "sale_price"); err != nil {
		return err
	}
	item.SalePrice = req.SalePrice
	if item.SalePlatform, err = validation.CleanRequired(req.SalePlatform, validation.DefaultMaxStringLength, "sale_platform"); err != nil {
		return err
	}
	if req.SaleDate == "" {
		item.SaleDate = today.Format(validation.ISODateLayout)
	} else {
		d, err := validation.ValidateISODate(req.SaleDate, "sale_date")
		if err != nil {
			return err
		}
		item.SaleDate = d.Format(validation.ISODateLayout)
	}
	if item.Category, err = validation.CleanOptional(req.Category, validation.DefaultMaxStringLength, "category"); err != nil {
		return err
	}
	if item.Condition, err = validation.CleanOptional(req.Condition, validation.DefaultMaxStringLength, "condition"); err != nil {
		return err
	}
	if item.Description, err = validation.CleanOptional(req.Description, validation.MaxDescriptionLength, "description"); err != nil {
		return err
	}
	item.SoldFor = models.NormalizeSoldFor(req.SoldFor)
	return nil
}

func (h *SalesHandler) HandleListSales(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	items, err := model.ListSalesItems(database.DB, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list sales items", "error", err)
		utils.SendJSONError(w, "Failed to load sales", http.StatusInternalServerError)
		return
	}
	utils.SendJSONWithETag(w, r, map[string]any{
		"sales": items,
		"stats": h.processor.Aggregate(items),
	})
}

func (h *SalesHandler) HandleCreateSale(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	var req salesItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	item := &models.SalesItem{UserID: userID}
	if err := req.apply(item, h.now()); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.CreateSalesItem(database.DB, item); err != nil {
		ctxLogger.Error("Failed to create sales item", "error", err)
		utils.SendJSONError(w, "Failed to save sales item", http.StatusInternalServerError)
		return
	}
	ctxLogger.Info("Sales item created", "saleID", item.ID)
	utils.SendJSON(w, http.StatusCreated, map[string]any{"sale": item})
}

func (h *SalesHandler) HandleUpdateSale(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req salesItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := model.GetSalesItem(database.DB, userID, id)
	if err != nil {
		h.sendLookupError(w, r, err)
		return
	}
	if req.SaleDate == "" {
		req.SaleDate = item.SaleDate
	}
	if err := req.apply(item, h.now()); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.UpdateSalesItem(database.DB, item); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Sales item not found", http.StatusBadRequest)
			return
		}
		ctxLogger.Error("Failed to update sales item", "saleID", id, "error", err)
		utils.SendJSONError(w, "Failed to save sales item", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"sale": item})
}

func (h *SalesHandler) HandleDeleteSale(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.DeleteSalesItem(database.DB, userID, id); err != nil {
		h.sendLookupError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Sales item deleted"})
}

func (h *SalesHandler) sendLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		utils.SendJSONError(w, "Sales item not found", http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Error("Sales item lookup failed", "error", err)
	utils.SendJSONError(w, "Failed to load sales item", http.StatusInternalServerError)
}
