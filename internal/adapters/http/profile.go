package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

const userIDHeader = "X-User-Id"

func (rt *Router) profileByKey(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-User-Id header is required"})
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/v1/profile/")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "profile key is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := rt.profiles.GetProfile(r.Context(), userID, key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case http.MethodPut:
		var dto struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if strings.TrimSpace(dto.Value) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value is required"})
			return
		}

		entry := domain.ProfileEntry{UserID: userID, Key: key, Value: dto.Value}
		if err := rt.profiles.PutProfile(r.Context(), entry); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}
