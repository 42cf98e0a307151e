package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/buddyboard/buddyboard/internal/models"
)

// ModerationSearcher looks up indexed rejection events
type ModerationSearcher interface {
	Search(ctx context.Context, req models.ModerationSearchRequest) (*models.ModerationSearchResponse, error)
}

// ModerationHandler handles the admin moderation log
type ModerationHandler struct {
	index ModerationSearcher
}

func NewModerationHandler(index ModerationSearcher) *ModerationHandler {
	return &ModerationHandler{index: index}
}

// Search handles GET /api/v1/admin/moderation?field=&rule=&ruleset=&size=
func (h *ModerationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.ModerationSearchRequest{
		Field:   q.Get("field"),
		Rule:    q.Get("rule"),
		Ruleset: q.Get("ruleset"),
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			models.WriteError(w, http.StatusBadRequest, "size must be an integer")
			return
		}
		req.Size = n
	}
	req.SetDefaults()

	resp, err := h.index.Search(r.Context(), req)
	if err != nil {
		models.WriteError(w, http.StatusBadGateway, "moderation search failed: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, resp)
}
