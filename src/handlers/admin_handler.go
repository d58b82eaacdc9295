package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

const (
	adminStatsCacheKey = "admin_stats"
	adminStatsTTL      = 5 * time.Minute
)

type AdminHandler struct {
	cache        *cache.Cache
	priceService services.PriceService
	fxService    services.ExchangeRateService
	boards       *services.BoardService
}

func NewAdminHandler(statsCache *cache.Cache, priceService services.PriceService, fxService services.ExchangeRateService, boards *services.BoardService) *AdminHandler {
	return &AdminHandler{cache: statsCache, priceService: priceService, fxService: fxService, boards: boards}
}

type adminUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := model.ListUsers(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list users", "error", err)
		utils.SendJSONError(w, "Failed to load users", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	var req adminUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	email, err := validation.ValidateEmail(req.Email)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	username, err := validation.CleanOptional(req.Username, validation.DefaultMaxStringLength, "username")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := model.GetUserByEmail(database.DB, email); err == nil {
		utils.SendJSONError(w, "A user with this email already exists", http.StatusBadRequest)
		return
	} else if !errors.Is(err, model.ErrNotFound) {
		ctxLogger.Error("User lookup failed", "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	user := &model.User{Username: username, Email: email, Role: req.Role}
	if err := user.HashPassword(req.Password); err != nil {
		ctxLogger.Error("Failed to hash password", "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		ctxLogger.Error("Failed to create user", "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	h.cache.Delete(adminStatsCacheKey)
	ctxLogger.Info("Admin created user", "newUserID", user.ID, "role", user.Role)
	utils.SendJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *AdminHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	adminID, _ := GetUserIDFromContext(r.Context())

	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req adminUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Password != "" {
		if err := validation.ValidatePassword(req.Password); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	user, err := model.GetUserByID(database.DB, id)
	if err != nil {
		sendUserLookupError(w, r, err)
		return
	}

	if req.Email != "" {
		if user.Email, err = validation.ValidateEmail(req.Email); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Username != "" {
		if user.Username, err = validation.CleanRequired(req.Username, validation.DefaultMaxStringLength, "username"); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Role != "" {
		role := model.NormalizeRole(req.Role)
		if id == adminID && role != model.RoleAdmin {
			utils.SendJSONError(w, "You cannot remove your own admin role", http.StatusBadRequest)
			return
		}
		user.Role = role
	}

	if err := user.UpdateProfile(database.DB); err != nil {
		ctxLogger.Error("Failed to update user", "targetUserID", id, "error", err)
		utils.SendJSONError(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	if req.Password != "" {
		if err := user.HashPassword(req.Password); err != nil {
			utils.SendJSONError(w, "Failed to update user", http.StatusInternalServerError)
			return
		}
		if err := user.UpdatePassword(database.DB, user.Password); err != nil {
			ctxLogger.Error("Failed to update password", "targetUserID", id, "error", err)
			utils.SendJSONError(w, "Failed to update user", http.StatusInternalServerError)
			return
		}
	}
	h.cache.Delete(adminStatsCacheKey)
	utils.SendJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	adminID, _ := GetUserIDFromContext(r.Context())

	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if id == adminID {
		utils.SendJSONError(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}
	if err := model.DeleteUser(database.DB, id); err != nil {
		sendUserLookupError(w, r, err)
		return
	}
	h.cache.Delete(adminStatsCacheKey)
	ctxLogger.Info("Admin deleted user", "targetUserID", id)
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

type adminStatsResponse struct {
	*model.AdminStats
	BoardSessions int       `json:"boardSessions"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// HandleGetAdminStats serves usage statistics, cached for a few minutes.
func (h *AdminHandler) HandleGetAdminStats(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(adminStatsCacheKey); found {
		utils.SendJSON(w, http.StatusOK, map[string]any{"stats": cached})
		return
	}

	stats, err := model.GetAdminStats(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute admin stats", "error", err)
		utils.SendJSONError(w, "Failed to load statistics", http.StatusInternalServerError)
		return
	}
	resp := adminStatsResponse{AdminStats: stats, BoardSessions: h.boards.ActiveSessions(), GeneratedAt: time.Now().UTC()}
	h.cache.Set(adminStatsCacheKey, resp, adminStatsTTL)
	utils.SendJSON(w, http.StatusOK, map[string]any{"stats": resp})
}

// HandleClearCache drops cached statistics, quotes and exchange rates.
func (h *AdminHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Flush()
	h.priceService.ClearCache()
	h.fxService.ClearCache()
	logger.FromContext(r.Context()).Info("Admin cleared caches")
	w.WriteHeader(http.StatusNoContent)
}

func sendUserLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		utils.SendJSONError(w, "User not found", http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Error("User query failed", "error", err)
	utils.SendJSONError(w, "Failed to load user", http.StatusInternalServerError)
}
