package timesheet

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/rbac"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

func newGridRouter(t *testing.T) (chi.Router, *memoryGridRepo, *Service) {
	t.Helper()
	repo := newMemoryGridRepo()
	service := NewService(repo, false)
	handler := NewHandler(slog.Default(), service)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, repo, service
}

func gridRequest(t *testing.T, router chi.Router, method, target, body string, actor *shared.Actor) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(shared.ContextWithActor(req.Context(), *actor))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func seedGridWithFactoryPrice(t *testing.T, repo *memoryGridRepo, service *Service) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	ts, err := service.GetOrCreate(ctx, 1, 20, marchPeriod)
	require.NoError(t, err)
	routeID := repo.addRoute(1, "150.00", "200.00", 20)
	_, err = service.WriteEntry(ctx, ts.ID, marchPeriod.Day(1), routeID, 2)
	require.NoError(t, err)
	return ts.ID, routeID
}

func TestGridRequiresActor(t *testing.T) {
	router, repo, service := newGridRouter(t)
	seedGridWithFactoryPrice(t, repo, service)

	res := gridRequest(t, router, http.MethodGet, "/timesheets/1", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.NotContains(t, res.Body.String(), "factory_unit_price")

	res = gridRequest(t, router, http.MethodPut, "/timesheets/1/entries",
		`{"date":"2021-03-02","route_id":1,"trip_count":1}`, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestGridRedactsFactoryPriceForViewer(t *testing.T) {
	router, repo, service := newGridRouter(t)
	seedGridWithFactoryPrice(t, repo, service)

	viewer := shared.Actor{ID: 4, Name: "viewer", Role: rbac.RoleViewer}
	res := gridRequest(t, router, http.MethodGet, "/timesheets/1", "", &viewer)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"supplier_unit_price":"150.00"`)
	require.NotContains(t, res.Body.String(), "factory_unit_price")

	admin := shared.Actor{ID: 1, Name: "admin", Role: rbac.RoleAdmin}
	res = gridRequest(t, router, http.MethodGet, "/timesheets/1", "", &admin)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"factory_unit_price":"200.00"`)
}

func TestWriteEntryResponseRedactsFactoryPrice(t *testing.T) {
	router, repo, service := newGridRouter(t)
	_, routeID := seedGridWithFactoryPrice(t, repo, service)

	clerk := shared.Actor{ID: 3, Name: "clerk", Role: rbac.RoleClerk}
	body, err := json.Marshal(map[string]any{"date": "2021-03-02", "route_id": routeID, "trip_count": 3})
	require.NoError(t, err)

	res := gridRequest(t, router, http.MethodPut, "/timesheets/1/entries", string(body), &clerk)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"supplier_unit_price":"150.00"`)
	require.NotContains(t, res.Body.String(), "factory_unit_price")

	// Redaction is presentation only; the stored snapshot keeps the
	// factory price.
	stored := repo.entries[entryKey(1, marchPeriod.Day(2), routeID)]
	require.NotNil(t, stored)
	require.NotNil(t, stored.Snapshot.FactoryUnitPrice)
}
