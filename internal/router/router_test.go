package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/recipe-service/internal/config"
	"github.com/deppfellow/recipe-service/internal/database/dbtest"
	"github.com/deppfellow/recipe-service/internal/errs"
	"github.com/deppfellow/recipe-service/internal/handler"
	"github.com/deppfellow/recipe-service/internal/model"
	"github.com/deppfellow/recipe-service/internal/repository"
	"github.com/deppfellow/recipe-service/internal/server"
	"github.com/deppfellow/recipe-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stored = model.Recipe{
	ID:              7,
	Name:            "Soup",
	Ingredients:     "water,salt",
	Description:     "simple",
	Created:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	Updated:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	PreparationTime: 10,
	Preparation:     "boil",
	AdminID:         1,
}

func newTestRouter(t *testing.T, rateLimit float64) (*echo.Echo, *dbtest.Provider) {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "0",
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          rateLimit,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}

	provider := dbtest.NewProvider(t)
	repos := repository.NewRepositoriesWithProvider(provider)

	services, err := service.NewService(s, repos)
	require.NoError(t, err)

	return NewRouter(s, handler.NewHandlers(s, services)), provider
}

func serve(r *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateRecipe(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO recipe")).
		WithArgs("Soup", "water,salt", "simple", pgxmock.AnyArg(), pgxmock.AnyArg(), 10, "boil", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec := serve(r, http.MethodPost, "/api/v1/recipes",
		`{"name":"Soup","ingredients":"water,salt","description":"simple","preparationTime":10,"preparation":"boil","adminId":1}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got model.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Soup", got.Name)
	assert.False(t, got.Created.IsZero())
	assert.True(t, got.Created.Equal(got.Updated))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	provider.AssertBalanced(t)
}

func TestCreateRecipe_Invalid(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	rec := serve(r, http.MethodPost, "/api/v1/recipes", `{"ingredients":"water","preparationTime":-5,"adminId":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "name", Error: "is required"},
		{Field: "preparationTime", Error: "must be greater than or equal to 0"},
	}, body.Errors)
	assert.Zero(t, provider.Acquired())
}

func TestGetRecipe(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("FROM recipe WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(dbtest.RecipeRows(stored))

	rec := serve(r, http.MethodGet, "/api/v1/recipes/7", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, stored.Name, got.Name)
	assert.Equal(t, stored.PreparationTime, got.PreparationTime)
	assert.True(t, stored.Created.Equal(got.Created))
	assert.Contains(t, rec.Body.String(), `"adminId":1`)
	provider.AssertBalanced(t)
}

func TestGetRecipe_NotFound(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("FROM recipe WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(dbtest.RecipeRows())

	rec := serve(r, http.MethodGet, "/api/v1/recipes/404", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", decodeError(t, rec).Code)
	provider.AssertBalanced(t)
}

func TestGetRecipe_BadID(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	for _, target := range []string{"/api/v1/recipes/abc", "/api/v1/recipes/0"} {
		rec := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	assert.Zero(t, provider.Acquired())
}

func TestRecipeRoutes_IDOutOfRange(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	targets := []string{
		"/api/v1/recipes/3000000000",
		"/api/v1/admins/2147483648/recipes",
		"/api/v1/admins/2147483648/recipes/count",
	}
	for _, target := range targets {
		rec := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "must be less than or equal to 2147483647", target)
	}

	rec := serve(r, http.MethodDelete, "/api/v1/recipes/3000000000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, provider.Acquired())
}

func TestListRecipes_Empty(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("FROM recipe") + "$").
		WillReturnRows(dbtest.RecipeRows())

	rec := serve(r, http.MethodGet, "/api/v1/recipes", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	provider.AssertBalanced(t)
}

func TestUpdateRecipe(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	updated := stored
	updated.Name = "Tomato soup"

	provider.Mock.ExpectExec(regexp.QuoteMeta("UPDATE recipe SET")).
		WithArgs("Tomato soup", "water,salt", "simple", pgxmock.AnyArg(), 10, "boil", int64(1), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	provider.Mock.ExpectQuery(regexp.QuoteMeta("FROM recipe WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(dbtest.RecipeRows(updated))

	// The body id is ignored; the path decides which row is written.
	rec := serve(r, http.MethodPut, "/api/v1/recipes/7",
		`{"id":99,"name":"Tomato soup","ingredients":"water,salt","description":"simple","preparationTime":10,"preparation":"boil","adminId":1}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"Tomato soup"`)
	provider.AssertBalanced(t)
}

func TestDeleteRecipe(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	provider.Mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	first := serve(r, http.MethodDelete, "/api/v1/recipes/7", "")
	second := serve(r, http.MethodDelete, "/api/v1/recipes/7", "")

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Empty(t, first.Body.String())
	assert.Equal(t, http.StatusNotFound, second.Code)
	provider.AssertBalanced(t)
}

func TestAdminRecipes(t *testing.T) {
	r, provider := newTestRouter(t, 1000)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("FROM recipe WHERE admin_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(dbtest.RecipeRows(stored))
	provider.Mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM recipe WHERE admin_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	list := serve(r, http.MethodGet, "/api/v1/admins/1/recipes", "")
	count := serve(r, http.MethodGet, "/api/v1/admins/1/recipes/count", "")

	require.Equal(t, http.StatusOK, list.Code)
	var recipes []model.Recipe
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &recipes))
	assert.Len(t, recipes, 1)

	require.Equal(t, http.StatusOK, count.Code)
	assert.JSONEq(t, `{"count":1}`, count.Body.String())
	provider.AssertBalanced(t)
}

func TestConnectionUnavailable(t *testing.T) {
	r, provider := newTestRouter(t, 1000)
	provider.AcquireErr = errors.New("pool closed")

	rec := serve(r, http.MethodGet, "/api/v1/recipes", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestSystemRoutes(t *testing.T) {
	r, _ := newTestRouter(t, 1000)

	status := serve(r, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
	assert.Contains(t, status.Body.String(), `"status":"unhealthy"`)

	docs := serve(r, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, docs.Code)
	assert.Equal(t, "no-cache", docs.Header().Get("Cache-Control"))

	doc := serve(r, http.MethodGet, "/static/openapi.json", "")
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "/api/v1/recipes")

	missing := serve(r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRateLimit(t *testing.T) {
	r, provider := newTestRouter(t, 1)

	provider.Mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM recipe WHERE admin_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	first := serve(r, http.MethodGet, "/api/v1/admins/1/recipes/count", "")
	second := serve(r, http.MethodGet, "/api/v1/admins/1/recipes/count", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, second).Code)
	provider.AssertBalanced(t)
}
