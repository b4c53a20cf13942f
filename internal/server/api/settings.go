package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayusman/posecursor/internal/config"
	"github.com/ayusman/posecursor/internal/store"
)

// SettingsHandler reads and updates the stored settings used by the next session.
// The running session is never affected.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// effective returns the stored settings applied on top of the defaults.
func (h *SettingsHandler) effective() (config.Config, error) {
	stored, err := h.store.Settings().All()
	if err != nil {
		return config.Config{}, err
	}
	return config.DefaultConfig().Apply(stored)
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.effective()
	if err != nil {
		log.Printf("settings: load failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Settings()})
}

// update handles PUT /api/settings. The body is a partial key/value map; the
// merged result must validate before anything is stored.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no settings given")
		return
	}

	base, err := h.effective()
	if err != nil {
		log.Printf("settings: load failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	cfg, err := base.Apply(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetAll(req); err != nil {
		log.Printf("settings: save failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Settings()})
}
