package establishment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T) (*echo.Echo, *mockRepo, *mockCounter) {
	t.Helper()
	repo := newMockRepo()
	counter := &mockCounter{counts: make(map[uuid.UUID]int)}
	e := echo.New()
	NewHandler(NewService(repo, counter)).RegisterRoutes(e.Group("/api/v1"))
	return e, repo, counter
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/v1/establishments", `{"name":"Sunrise Home","address":"1 Main St"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created Establishment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Name != "Sunrise Home" || created.ID == uuid.Nil {
		t.Errorf("unexpected created record: %+v", created)
	}

	rec = do(e, http.MethodPost, "/api/v1/establishments", `{"name":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name: status = %d, want 400", rec.Code)
	}
}

func TestGetEndpoint_NotFound(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/v1/establishments/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteEndpoint_GuardsResidents(t *testing.T) {
	e, repo, counter := newTestServer(t)
	est := &Establishment{Name: "Sunrise Home"}
	if err := repo.Create(context.Background(), est); err != nil {
		t.Fatalf("seed: %v", err)
	}
	counter.counts[est.ID] = 1

	rec := do(e, http.MethodDelete, "/api/v1/establishments/"+est.ID.String(), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("occupied establishment: status = %d, want 409", rec.Code)
	}

	counter.counts[est.ID] = 0
	rec = do(e, http.MethodDelete, "/api/v1/establishments/"+est.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("empty establishment: status = %d, want 200", rec.Code)
	}

	rec = do(e, http.MethodDelete, "/api/v1/establishments/"+est.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}
