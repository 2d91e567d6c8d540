package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ringside/internal/arena"
	"ringside/internal/ui"
)

// mockEngine implements EngineInterface without running a tick loop.
type mockEngine struct {
	snapshot *arena.MatchSnapshot

	attacks   []arena.AttackKind
	defenses  []arena.DefenseKind
	cancels   int
	moves     map[string]float64
	testModes map[string]bool

	attackVerdict arena.AttackVerdict
	defenseOK     bool
	cancelOK      bool
	knownFighters map[string]bool
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		snapshot: &arena.MatchSnapshot{
			TickNumber: 42,
			Fighters: []arena.FighterSnapshot{
				{ID: "red", Name: "Red", Corner: "red", Z: -1.0, Facing: 1, StateTag: "idle"},
				{ID: "blue", Name: "Blue", Corner: "blue", Z: 1.0, Facing: -1, StateTag: "idle"},
			},
		},
		moves:         make(map[string]float64),
		testModes:     make(map[string]bool),
		attackVerdict: arena.AttackFired,
		defenseOK:     true,
		cancelOK:      true,
		knownFighters: map[string]bool{"Red": true, "Blue": true},
	}
}

func (m *mockEngine) GetSnapshot() *arena.MatchSnapshot { return m.snapshot }

func (m *mockEngine) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"tickNumber": m.snapshot.TickNumber,
		"running":    false,
		"eventLog":   map[string]interface{}{"total": uint64(7), "dropped": uint64(0)},
	}
}

func (m *mockEngine) CommandAttack(name string, kind arena.AttackKind) (arena.AttackVerdict, error) {
	if !m.knownFighters[name] {
		return arena.AttackRejected, errUnknownFighter(name)
	}
	m.attacks = append(m.attacks, kind)
	return m.attackVerdict, nil
}

func (m *mockEngine) CommandDefense(name string, kind arena.DefenseKind) (bool, error) {
	if !m.knownFighters[name] {
		return false, errUnknownFighter(name)
	}
	m.defenses = append(m.defenses, kind)
	return m.defenseOK, nil
}

func (m *mockEngine) CommandCancel(name string) (bool, error) {
	if !m.knownFighters[name] {
		return false, errUnknownFighter(name)
	}
	m.cancels++
	return m.cancelOK, nil
}

func (m *mockEngine) CommandMove(name string, axis float64) error {
	if !m.knownFighters[name] {
		return errUnknownFighter(name)
	}
	m.moves[name] = axis
	return nil
}

func (m *mockEngine) CommandTestMode(name string, on bool) error {
	if !m.knownFighters[name] {
		return errUnknownFighter(name)
	}
	m.testModes[name] = on
	return nil
}

func (m *mockEngine) CommandAction(name string, action arena.Action) (string, error) {
	switch action.Op {
	case arena.OpAttack:
		if _, err := m.CommandAttack(name, action.Attack); err != nil {
			return "", err
		}
		return "fired", nil
	case arena.OpDefense:
		if _, err := m.CommandDefense(name, action.Defense); err != nil {
			return "", err
		}
		return "accepted", nil
	default:
		if _, err := m.CommandCancel(name); err != nil {
			return "", err
		}
		return "canceled", nil
	}
}

type unknownFighterError string

func (e unknownFighterError) Error() string { return "unknown fighter " + string(e) }

func errUnknownFighter(name string) error { return unknownFighterError(name) }

// testRouterConfig returns a router config with rate limiting effectively off.
func testRouterConfig(engine EngineInterface) RouterConfig {
	return RouterConfig{
		Engine: engine,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Hour,
		},
		DisableLogging: true,
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

// TestNewRouterHasNoSideEffects verifies that NewRouter is a pure function
// with no goroutines started and no network listeners opened.
func TestNewRouterHasNoSideEffects(t *testing.T) {
	router := NewRouter(testRouterConfig(newMockEngine()))
	if router == nil {
		t.Fatal("Router should not be nil")
	}
	// If we got here without hanging, the router construction is pure
}

// TestGetState tests the match state endpoint.
func TestGetState(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	fighters, ok := result["fighters"].([]interface{})
	if !ok {
		t.Fatal("Response should contain fighters array")
	}
	if len(fighters) != 2 {
		t.Errorf("Expected 2 fighters, got %d", len(fighters))
	}
}

// TestGetStateBeforeFirstTick returns 503 until a snapshot exists.
func TestGetStateBeforeFirstTick(t *testing.T) {
	engine := newMockEngine()
	engine.snapshot = nil
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

// TestGetFighter tests fetching one fighter by name.
// TestGetStats serves the engine's stats map as-is, including the event log
// counters the engine already folds in.
func TestGetStats(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	logStats, ok := result["eventLog"].(map[string]interface{})
	if !ok {
		t.Fatal("Response should contain eventLog stats")
	}
	if logStats["total"] != float64(7) {
		t.Errorf("Expected eventLog total 7, got %v", logStats["total"])
	}
}

func TestGetFighter(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/fighters/Blue/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	if result["corner"] != "blue" {
		t.Errorf("Expected blue corner, got %v", result["corner"])
	}

	resp, err = http.Get(ts.URL + "/api/fighters/Nobody/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown fighter, got %d", resp.StatusCode)
	}
}

// TestAttackEndpoint covers attack parsing and dispatch.
func TestAttackEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid attack", `{"attack": "jab"}`, http.StatusOK},
		{"display name", `{"attack": "Left Hook"}`, http.StatusOK},
		{"unknown attack", `{"attack": "haymaker"}`, http.StatusBadRequest},
		{"invalid json", `{invalid}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/fighters/Red/attack", tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}

	if len(engine.attacks) != 2 {
		t.Fatalf("Expected 2 dispatched attacks, got %d", len(engine.attacks))
	}
	if engine.attacks[0] != arena.AttackJab || engine.attacks[1] != arena.AttackLeftHook {
		t.Errorf("Dispatched attacks wrong: %v", engine.attacks)
	}
}

// TestAttackUnknownFighter maps engine errors to 404.
func TestAttackUnknownFighter(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/fighters/Nobody/attack", `{"attack": "jab"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

// TestDefenseEndpoint covers defense parsing and the accepted flag.
func TestDefenseEndpoint(t *testing.T) {
	engine := newMockEngine()
	engine.defenseOK = false
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/fighters/Red/defense", `{"defense": "duck"}`)
	result := decodeBody(t, resp)
	if result["accepted"] != false {
		t.Errorf("Expected accepted=false, got %v", result["accepted"])
	}
	if len(engine.defenses) != 1 || engine.defenses[0] != arena.DefenseDuck {
		t.Errorf("Dispatched defenses wrong: %v", engine.defenses)
	}
}

// TestMoveEndpoint checks the axis reaches the engine.
func TestMoveEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/fighters/Red/move", `{"axis": -0.5}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if engine.moves["Red"] != -0.5 {
		t.Errorf("Expected axis -0.5, got %v", engine.moves["Red"])
	}
}

// TestActionEndpoint resolves logical action names.
func TestActionEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/fighters/Red/action", `{"action": "attack:jab"}`)
	result := decodeBody(t, resp)
	if result["outcome"] != "fired" {
		t.Errorf("Expected fired, got %v", result["outcome"])
	}

	resp = postJSON(t, ts.URL+"/api/fighters/Red/action", `{"action": "wave"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unbound action, got %d", resp.StatusCode)
	}
}

// TestTestModeEndpoint toggles the AI cycling loop.
func TestTestModeEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(NewRouter(testRouterConfig(engine)))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/ai/testmode", `{"fighter": "Blue", "enabled": true}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !engine.testModes["Blue"] {
		t.Error("Test mode should be enabled for Blue")
	}
}

// TestPickerFlow drives open, arm, confirm over HTTP and verifies that combat
// input is locked while the overlay is open.
func TestPickerFlow(t *testing.T) {
	engine := newMockEngine()

	confirmed := ""
	picker := ui.NewPicker([]string{"jab", "straight"}, func(id string) { confirmed = id })
	view := ui.NewViewState()

	cfg := testRouterConfig(engine)
	cfg.Picker = picker
	cfg.ViewState = view
	ts := httptest.NewServer(NewRouter(cfg))
	defer ts.Close()

	// Open the overlay; combat input goes dead.
	resp := postJSON(t, ts.URL+"/api/picker/open", `{}`)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/fighters/Red/attack", `{"attack": "jab"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 while picker open, got %d", resp.StatusCode)
	}

	// First press arms, second confirms.
	resp = postJSON(t, ts.URL+"/api/picker/press", `{"option": "jab"}`)
	result := decodeBody(t, resp)
	if result["result"] != "armed" {
		t.Errorf("Expected armed, got %v", result["result"])
	}
	resp = postJSON(t, ts.URL+"/api/picker/press", `{"option": "jab"}`)
	result = decodeBody(t, resp)
	if result["result"] != "confirmed" {
		t.Errorf("Expected confirmed, got %v", result["result"])
	}
	if confirmed != "jab" {
		t.Errorf("Confirm callback got %q", confirmed)
	}

	// Confirmation closed the overlay, so combat input is live again.
	resp = postJSON(t, ts.URL+"/api/fighters/Red/attack", `{"attack": "jab"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 after confirm, got %d", resp.StatusCode)
	}
}

// TestPickerNotConfigured returns 404 on picker routes without a picker.
func TestPickerNotConfigured(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/picker/open", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

// TestHealthz checks the liveness endpoint.
func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

// TestDebugFrame renders a PNG from the snapshot.
func TestDebugFrame(t *testing.T) {
	ts := httptest.NewServer(NewRouter(testRouterConfig(newMockEngine())))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/debug/frame.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
}

// TestRateLimitRejects verifies the per-IP limiter returns 429 once the burst
// is spent.
func TestRateLimitRejects(t *testing.T) {
	cfg := testRouterConfig(newMockEngine())
	cfg.RateLimitConfig = &RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Hour,
	}
	ts := httptest.NewServer(NewRouter(cfg))
	defer ts.Close()

	got429 := false
	for i := 0; i < 10; i++ {
		resp, err := http.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("Expected a 429 after burst exhausted")
	}
}

// TestServerRouterWithRealEngine wires a real stopped engine through the full
// server construction and reads state produced by a manual step.
func TestServerRouterWithRealEngine(t *testing.T) {
	engine := arena.NewEngine(arena.EngineConfig{Seed: 7})
	engine.AddFighter("Red", arena.CornerRed, arena.ControlPlayer)
	engine.AddFighter("Blue", arena.CornerBlue, arena.ControlAI)
	engine.StepOnce(1.0 / 60.0)

	server := NewServer(engine, ServerConfig{})
	defer server.Stop()

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	fighters, ok := result["fighters"].([]interface{})
	if !ok || len(fighters) != 2 {
		t.Fatalf("Expected 2 fighters in state, got %v", result["fighters"])
	}
}
