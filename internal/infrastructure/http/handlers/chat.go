package handlers

import (
	"net/http"

	"github.com/planea/aiserver/internal/application/chat"
	chatdom "github.com/planea/aiserver/internal/domain/chat"
	"github.com/planea/aiserver/pkg/errors"
)

type chatPayload struct {
	Message             string              `json:"message" validate:"required"`
	ConversationHistory []chatdom.Turn      `json:"conversation_history"`
	UserContext         chatdom.UserContext `json:"user_context"`
	Language            string              `json:"language"`
}

// Chat handles POST /chat. The assistant is a premium feature: requests
// without the premium flag are rejected before any classification runs.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if !h.decode(w, r, &payload) {
		return
	}
	language := normalizeLanguage(payload.Language)

	if !payload.UserContext.HasPremium {
		h.writeError(w, r, errors.NewForbiddenError("premium subscription required"))
		return
	}

	result, err := h.chats.Handle(r.Context(), chat.Request{
		Message:     payload.Message,
		History:     payload.ConversationHistory,
		UserContext: payload.UserContext,
		Language:    language,
	})
	if err != nil {
		h.writeError(w, r, errors.NewInternalError(generationFailed(language)).WithCause(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
