package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/security"
)

// ValidateHandler lets clients check text before submitting a form
type ValidateHandler struct{}

func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{}
}

// Validate handles POST /api/v1/validate. A rejection is still a 200; the
// outcome is in the body.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rs := security.RulesetFor(req.Field)
	if req.Ruleset != "" {
		var ok bool
		if rs, ok = security.RulesetByName(req.Ruleset); !ok {
			models.WriteError(w, http.StatusBadRequest, "unknown ruleset: "+req.Ruleset)
			return
		}
	}

	res := rs.Classify(req.Text)
	models.WriteJSON(w, http.StatusOK, models.ValidateResponse{
		Valid:   res.Valid,
		Ruleset: rs.Name(),
		Rule:    res.Rule,
		Message: res.Message,
	})
}
