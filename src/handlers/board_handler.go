package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/homedash/backend/src/board"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

// BoardHandler exposes the per-user in-memory task board.
type BoardHandler struct {
	boards *services.BoardService
}

func NewBoardHandler(boards *services.BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

func (h *BoardHandler) sendBoardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, board.ErrUnknownCard),
		errors.Is(err, board.ErrUnknownColumn),
		errors.Is(err, board.ErrIndexOutOfRange),
		errors.Is(err, board.ErrInvalidBoard):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Board operation failed", "error", err)
		utils.SendJSONError(w, "Board operation failed", http.StatusInternalServerError)
	}
}

func (h *BoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	view, err := h.boards.Get(userID)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view})
}

func (h *BoardHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req struct {
		Title        string          `json:"title"`
		Priority     string          `json:"priority"`
		ColumnID     string          `json:"columnId"`
		AssignedUser string          `json:"assignedUser"`
		DateRange    board.DateRange `json:"dateRange"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	title, err := validation.CleanRequired(req.Title, validation.DefaultMaxStringLength, "title")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	assignee, err := validation.CleanOptional(req.AssignedUser, validation.DefaultMaxStringLength, "assignedUser")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	card, view, err := h.boards.AddCard(userID, board.NewCard{
		Title:        title,
		Priority:     board.ParsePriority(req.Priority),
		ColumnID:     req.ColumnID,
		AssignedUser: assignee,
		DateRange:    req.DateRange,
	})
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{"card": card, "board": view})
}

func (h *BoardHandler) HandleMoveCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req struct {
		CardID   string `json:"cardId"`
		ColumnID string `json:"columnId"`
		Index    int    `json:"index"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.boards.MoveCard(userID, req.CardID, req.ColumnID, req.Index)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view})
}

func (h *BoardHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req struct {
		ColumnID  string `json:"columnId"`
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.boards.Reorder(userID, req.ColumnID, req.FromIndex, req.ToIndex)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view})
}

// HandleDrag applies a completed drag gesture. A drop without a valid target
// is not an error: the board comes back unchanged with moved=false.
func (h *BoardHandler) HandleDrag(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req struct {
		CardID string           `json:"cardId"`
		Target board.DropTarget `json:"target"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, moved, err := h.boards.Drag(userID, req.CardID, req.Target)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view, "moved": moved})
}

func (h *BoardHandler) HandleRenameColumn(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	var req struct {
		Title string `json:"title"`
		Key   string `json:"key"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Column titles are stored exactly as typed, only trimmed.
	title := strings.TrimSpace(req.Title)
	if err := validation.ValidateStringMaxLength(title, validation.DefaultMaxStringLength, "title"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, changed, err := h.boards.RenameColumn(userID, chi.URLParam(r, "id"), title, req.Key)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view, "changed": changed})
}

func (h *BoardHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	view, err := h.boards.Reset(userID)
	if err != nil {
		h.sendBoardError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"board": view})
}
