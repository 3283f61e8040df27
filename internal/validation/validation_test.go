package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/recipe-service/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ID       int64  `param:"id" validate:"gt=0"`
	Name     string `json:"name" validate:"required,max=5"`
	Minutes  int    `json:"prepMinutes" validate:"gte=0"`
	Internal string `json:"-"`
}

func (p *samplePayload) Validate() error {
	return Struct(p)
}

type customPayload struct {
	Name string `json:"name"`
}

func (p *customPayload) Validate() error {
	if p.Name == "bad" {
		return CustomValidationErrors{{Field: "name", Message: "is reserved"}}
	}
	return nil
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/samples/7", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/samples/:id")
	c.SetParamNames("id")
	c.SetParamValues("7")
	return c
}

func TestBindAndValidate_OK(t *testing.T) {
	payload := &samplePayload{}

	err := BindAndValidate(newContext(`{"name":"Soup","prepMinutes":10}`), payload)

	require.NoError(t, err)
	assert.Equal(t, int64(7), payload.ID)
	assert.Equal(t, "Soup", payload.Name)
	assert.Equal(t, 10, payload.Minutes)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	payload := &samplePayload{}

	err := BindAndValidate(newContext(`{"name":"Minestrone","prepMinutes":-1}`), payload)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.True(t, httpErr.Override)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "name", Error: "must not exceed 5 characters"},
		{Field: "prepMinutes", Error: "must be greater than or equal to 0"},
	}, httpErr.Errors)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":`), &samplePayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.False(t, httpErr.Override)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidate_TypeMismatch(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":"Soup","prepMinutes":"ten"}`), &samplePayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Contains(t, httpErr.Message, "Unmarshal type error")
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":"bad"}`), &customPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []errs.FieldError{{Field: "name", Error: "is reserved"}}, httpErr.Errors)
}
