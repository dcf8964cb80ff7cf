package battle

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/opquiz/meteor-crash/internal/server"
	httperrors "github.com/opquiz/meteor-crash/pkg/http/errors"
)

// HandleWebSocket upgrades the HTTP connection and reads the caller's
// identity from query parameters. Sessions are handled upstream; the
// caller just tells us who it is.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "Missing name")
		return
	}

	var externalID *int64
	if raw := r.URL.Query().Get("externalId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid externalId")
			return
		}
		externalID = &parsed
	}

	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(conn, Identity{
		ConnID:     uuid.New(),
		Name:       name,
		ExternalID: externalID,
	})
}
