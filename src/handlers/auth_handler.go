package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/security"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

type AuthHandler struct {
	authService *security.AuthService
	mfaService  *services.MFAService
}

func NewAuthHandler(authService *security.AuthService, mfaService *services.MFAService) *AuthHandler {
	return &AuthHandler{authService: authService, mfaService: mfaService}
}

type userView struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsAdmin    bool   `json:"is_admin"`
	MfaEnabled bool   `json:"mfa_enabled"`
}

func newUserView(u *model.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, IsAdmin: u.IsAdmin(), MfaEnabled: u.MfaEnabled}
}

// issueSession signs an access token, creates its session row and returns both tokens.
func (h *AuthHandler) issueSession(r *http.Request, user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = h.authService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = h.authService.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}
	session := &model.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.SessionExpiry),
	}
	if err := model.CreateSession(database.DB, session); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		MfaCode  string `json:"mfa_code"`
	}
	if err := decodeJSON(w, r, &credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	credentials.Email = strings.ToLower(validation.CleanText(credentials.Email))
	if credentials.Email == "" || credentials.Password == "" {
		utils.SendJSONError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByEmail(database.DB, credentials.Email)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			ctxLogger.Error("User lookup by email failed for login", "error", err)
		}
		utils.SendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := user.CheckPassword(credentials.Password); err != nil {
		ctxLogger.Warn("Password check failed for login", "userID", user.ID)
		utils.SendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if user.MfaEnabled {
		if credentials.MfaCode == "" {
			utils.SendJSON(w, http.StatusUnauthorized, map[string]any{"error": "MFA code required", "mfa_required": true})
			return
		}
		if !h.mfaService.ValidateCode(user.MfaSecret, credentials.MfaCode) {
			ctxLogger.Warn("Invalid MFA code on login", "userID", user.ID)
			utils.SendJSONError(w, "Invalid MFA code", http.StatusUnauthorized)
			return
		}
	}

	if config.Cfg.IsAdminEmail(user.Email) && !user.IsAdmin() {
		user.Role = model.RoleAdmin
		if err := user.UpdateProfile(database.DB); err != nil {
			ctxLogger.Error("Failed to promote admin user on login", "userID", user.ID, "error", err)
		}
	}

	if err := user.RecordLogin(database.DB); err != nil {
		ctxLogger.Error("Failed to record login", "userID", user.ID, "error", err)
	}

	accessToken, refreshToken, err := h.issueSession(r, user)
	if err != nil {
		ctxLogger.Error("Failed to create session", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	ctxLogger.Info("User login successful", "userID", user.ID)
	utils.SendJSON(w, http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          newUserView(user),
	})
}

func (h *AuthHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	oldSession, err := model.GetSessionByRefreshToken(database.DB, body.RefreshToken)
	if err != nil {
		if !errors.Is(err, model.ErrSessionInvalid) {
			ctxLogger.Error("Refresh token lookup failed", "error", err)
		}
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}
	if err := model.DeleteSessionByRefreshToken(database.DB, body.RefreshToken); err != nil {
		ctxLogger.Error("Failed to delete old session during refresh", "userID", oldSession.UserID, "error", err)
	}

	user, err := model.GetUserByID(database.DB, oldSession.UserID)
	if err != nil {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, user)
	if err != nil {
		ctxLogger.Error("Failed to create session on refresh", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	token := getTokenFromContext(r.Context())
	if err := model.DeleteSessionByToken(database.DB, token); err != nil {
		logger.FromContext(r.Context()).Warn("Failed to delete session on logout", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed in user.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"user": newUserView(user)})
}

// HandleSetupMFA stores a fresh pending secret. MFA stays off until HandleActivateMFA.
func (h *AuthHandler) HandleSetupMFA(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}
	if user.MfaEnabled {
		utils.SendJSONError(w, "MFA is already enabled", http.StatusBadRequest)
		return
	}

	secret, qrCode, err := h.mfaService.GenerateMFASecret(user.Email)
	if err != nil {
		ctxLogger.Error("Failed to generate MFA secret", "error", err)
		utils.SendJSONError(w, "Failed to generate MFA secret", http.StatusInternalServerError)
		return
	}
	if err := user.UpdateMfaSecret(database.DB, secret); err != nil {
		ctxLogger.Error("Failed to save MFA secret", "error", err)
		utils.SendJSONError(w, "Failed to save MFA secret", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"secret": secret, "qr_code": qrCode})
}

func (h *AuthHandler) HandleActivateMFA(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Code) == "" {
		utils.SendJSONError(w, "code is required", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}
	if user.MfaSecret == "" {
		utils.SendJSONError(w, "Run MFA setup first", http.StatusBadRequest)
		return
	}
	if !h.mfaService.ValidateCode(user.MfaSecret, strings.TrimSpace(req.Code)) {
		utils.SendJSONError(w, "Invalid MFA code", http.StatusBadRequest)
		return
	}
	if err := user.UpdateMfaEnabled(database.DB, true); err != nil {
		ctxLogger.Error("Failed to enable MFA", "error", err)
		utils.SendJSONError(w, "Failed to enable MFA", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "MFA enabled"})
}
