package api

import (
	"encoding/json"
	"net/http"

	"ringside/internal/arena"
	"ringside/internal/ui"

	"github.com/go-chi/chi/v5"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "No snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetStats())
}

func (h *routerHandlers) handleGetFighter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "No snapshot yet", http.StatusServiceUnavailable)
		return
	}

	for i := range snap.Fighters {
		if snap.Fighters[i].Name == name {
			writeJSON(w, snap.Fighters[i])
			return
		}
	}
	writeError(w, "Fighter not found", http.StatusNotFound)
}

func (h *routerHandlers) handleGetAttacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, arena.AllAttacks())
}

func (h *routerHandlers) handleAttack(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.combatInputLive() {
		writeError(w, "Combat input is locked", http.StatusConflict)
		return
	}

	var req struct {
		Attack string `json:"attack"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	kind, ok := arena.ParseAttackKind(req.Attack)
	if !ok {
		writeError(w, "Unknown attack", http.StatusBadRequest)
		return
	}

	verdict, err := h.engine.CommandAttack(name, kind)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	RecordPunch(kind.String())
	writeJSON(w, map[string]interface{}{
		"verdict": verdictString(verdict),
		"attack":  kind.String(),
	})
}

func (h *routerHandlers) handleDefense(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.combatInputLive() {
		writeError(w, "Combat input is locked", http.StatusConflict)
		return
	}

	var req struct {
		Defense string `json:"defense"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	kind, ok := arena.ParseDefenseKind(req.Defense)
	if !ok {
		writeError(w, "Unknown defense", http.StatusBadRequest)
		return
	}

	accepted, err := h.engine.CommandDefense(name, kind)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if accepted {
		RecordDefense(kind.String())
	}
	writeJSON(w, map[string]interface{}{
		"accepted": accepted,
		"defense":  kind.String(),
	})
}

func (h *routerHandlers) handleCancel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.combatInputLive() {
		writeError(w, "Combat input is locked", http.StatusConflict)
		return
	}

	canceled, err := h.engine.CommandCancel(name)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"canceled": canceled})
}

func (h *routerHandlers) handleMove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.combatInputLive() {
		writeError(w, "Combat input is locked", http.StatusConflict)
		return
	}

	var req struct {
		Axis float64 `json:"axis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.engine.CommandMove(name, req.Axis); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.combatInputLive() {
		writeError(w, "Combat input is locked", http.StatusConflict)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	action, ok := arena.ParseAction(req.Action)
	if !ok {
		writeError(w, "Unknown action", http.StatusBadRequest)
		return
	}

	outcome, err := h.engine.CommandAction(name, action)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{
		"action":  action.Name,
		"outcome": outcome,
	})
}

func (h *routerHandlers) handleTestMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fighter string `json:"fighter"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.engine.CommandTestMode(req.Fighter, req.Enabled); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// Picker endpoints. While the picker is open, combat input above returns 409.

func (h *routerHandlers) handlePickerGet(w http.ResponseWriter, r *http.Request) {
	if h.picker == nil {
		writeError(w, "Picker not configured", http.StatusNotFound)
		return
	}

	armed, hasArmed := h.picker.Armed()
	writeJSON(w, map[string]interface{}{
		"open":    h.picker.IsOpen(),
		"armed":   armed,
		"isArmed": hasArmed,
	})
}

func (h *routerHandlers) handlePickerOpen(w http.ResponseWriter, r *http.Request) {
	if h.picker == nil {
		writeError(w, "Picker not configured", http.StatusNotFound)
		return
	}

	h.picker.Open()
	if h.view != nil {
		h.view.EnterSelect()
	}
	writeJSON(w, map[string]bool{"open": true})
}

func (h *routerHandlers) handlePickerClose(w http.ResponseWriter, r *http.Request) {
	if h.picker == nil {
		writeError(w, "Picker not configured", http.StatusNotFound)
		return
	}

	h.picker.Close()
	if h.view != nil {
		h.view.ExitSelect()
	}
	writeJSON(w, map[string]bool{"open": false})
}

func (h *routerHandlers) handlePickerPress(w http.ResponseWriter, r *http.Request) {
	if h.picker == nil {
		writeError(w, "Picker not configured", http.StatusNotFound)
		return
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result := h.picker.Press(req.Option)
	if result == ui.PressConfirmed && h.view != nil {
		// Confirmation closes the overlay, so combat input comes back.
		h.view.ExitSelect()
	}
	writeJSON(w, map[string]string{"result": pressString(result)})
}

func pressString(r ui.PressResult) string {
	switch r {
	case ui.PressConfirmed:
		return "confirmed"
	case ui.PressArmed:
		return "armed"
	default:
		return "ignored"
	}
}

// combatInputLive reports whether combat commands should be accepted.
// Routers built without a view state never lock input.
func (h *routerHandlers) combatInputLive() bool {
	if h.view == nil {
		return true
	}
	return h.view.CombatInputLive()
}

func verdictString(v arena.AttackVerdict) string {
	switch v {
	case arena.AttackFired:
		return "fired"
	case arena.AttackQueued:
		return "queued"
	default:
		return "rejected"
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
