package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/oldirty/AirCodum/engine"
)

func TestHandleStatus_NoEngine(t *testing.T) {
	h := NewHandlers(nil, zap.NewNop())
	rr := httptest.NewRecorder()
	h.HandleStatus(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleStatus_WithEngine(t *testing.T) {
	t.Cleanup(engine.Shutdown)
	eng := engine.Initialize(engine.ScreenSize{Width: 1920, Height: 1080}, fakeSource{}, fakeCodec{}, zap.NewNop())

	h := NewHandlers(eng, zap.NewNop())
	rr := httptest.NewRecorder()
	h.HandleStatus(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body engine.Status
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Profile != "FHD" {
		t.Errorf("Profile = %q, want %q", body.Profile, "FHD")
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(nil, zap.NewNop())
	rr := httptest.NewRecorder()
	h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

type fakeSource struct{}

func (fakeSource) Capture(_ context.Context) ([]byte, error) {
	return nil, nil
}

type fakeCodec struct{}

func (fakeCodec) Decode(data []byte) (engine.Image, error) { return nil, nil }
