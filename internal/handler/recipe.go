package handler

import (
	"net/http"

	"github.com/deppfellow/recipe-service/internal/model"
	"github.com/deppfellow/recipe-service/internal/server"
	"github.com/deppfellow/recipe-service/internal/service"
	"github.com/deppfellow/recipe-service/internal/validation"
	"github.com/labstack/echo/v4"
)

// RecipePayload is the writable part of a recipe.
type RecipePayload struct {
	Name            string `json:"name" validate:"required,max=255"`
	Ingredients     string `json:"ingredients" validate:"max=10000"`
	Description     string `json:"description" validate:"max=10000"`
	PreparationTime int    `json:"preparationTime" validate:"gte=0,lte=100000"`
	Preparation     string `json:"preparation" validate:"max=20000"`
	AdminID         int64  `json:"adminId" validate:"gt=0,lte=2147483647"`
}

func (p RecipePayload) toModel() model.Recipe {
	return model.Recipe{
		Name:            p.Name,
		Ingredients:     p.Ingredients,
		Description:     p.Description,
		PreparationTime: p.PreparationTime,
		Preparation:     p.Preparation,
		AdminID:         p.AdminID,
	}
}

// CreateRecipeRequest is the body of POST /recipes.
type CreateRecipeRequest struct {
	RecipePayload
}

func (r *CreateRecipeRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateRecipeRequest is PUT /recipes/:id. The id comes from the path only;
// ids are capped at the int4 range of the recipe table.
type UpdateRecipeRequest struct {
	ID int64 `param:"id" json:"-" validate:"gt=0,lte=2147483647"`
	RecipePayload
}

func (r *UpdateRecipeRequest) Validate() error {
	return validation.Struct(r)
}

// RecipeIDRequest addresses a single recipe by path id.
type RecipeIDRequest struct {
	ID int64 `param:"id" json:"-" validate:"gt=0,lte=2147483647"`
}

func (r *RecipeIDRequest) Validate() error {
	return validation.Struct(r)
}

// AdminRecipesRequest addresses the recipes owned by one admin.
type AdminRecipesRequest struct {
	AdminID int64 `param:"adminId" json:"-" validate:"gt=0,lte=2147483647"`
}

func (r *AdminRecipesRequest) Validate() error {
	return validation.Struct(r)
}

// ListRecipesRequest carries no input.
type ListRecipesRequest struct{}

func (r *ListRecipesRequest) Validate() error {
	return nil
}

// CountResponse is the body of the admin count endpoint.
type CountResponse struct {
	Count int64 `json:"count"`
}

// RecipeHandler exposes RecipeService over HTTP. Store errors are returned
// unchanged and mapped to responses by the global error handler.
type RecipeHandler struct {
	Handler
	recipeService *service.RecipeService
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(s *server.Server, recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		Handler:       NewHandler(s),
		recipeService: recipeService,
	}
}

// CreateRecipe stores a new recipe and returns it with its generated id.
func (h *RecipeHandler) CreateRecipe(c echo.Context, req *CreateRecipeRequest) (*model.Recipe, error) {
	return h.recipeService.Create(c.Request().Context(), req.toModel())
}

// GetRecipe returns one recipe or a 404.
func (h *RecipeHandler) GetRecipe(c echo.Context, req *RecipeIDRequest) (*model.Recipe, error) {
	return h.recipeService.Get(c.Request().Context(), req.ID)
}

// ListRecipes returns every recipe. The list is never null.
func (h *RecipeHandler) ListRecipes(c echo.Context, req *ListRecipesRequest) ([]model.Recipe, error) {
	return h.recipeService.List(c.Request().Context())
}

// UpdateRecipe overwrites the recipe at the path id and returns the stored row.
func (h *RecipeHandler) UpdateRecipe(c echo.Context, req *UpdateRecipeRequest) (*model.Recipe, error) {
	recipe := req.toModel()
	recipe.ID = req.ID
	return h.recipeService.Update(c.Request().Context(), recipe)
}

// DeleteRecipe removes a recipe. Deleting a missing id is a 404.
func (h *RecipeHandler) DeleteRecipe(c echo.Context, req *RecipeIDRequest) error {
	return h.recipeService.Delete(c.Request().Context(), req.ID)
}

// ListAdminRecipes returns the recipes owned by an admin.
func (h *RecipeHandler) ListAdminRecipes(c echo.Context, req *AdminRecipesRequest) ([]model.Recipe, error) {
	return h.recipeService.ListByAdmin(c.Request().Context(), req.AdminID)
}

// CountAdminRecipes counts the recipes owned by an admin.
func (h *RecipeHandler) CountAdminRecipes(c echo.Context, req *AdminRecipesRequest) (*CountResponse, error) {
	count, err := h.recipeService.CountByAdmin(c.Request().Context(), req.AdminID)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: count}, nil
}

// RegisterRoutes mounts the recipe endpoints on g (the /api/v1 group).
func (h *RecipeHandler) RegisterRoutes(g *echo.Group) {
	recipes := g.Group("/recipes")
	recipes.POST("", Handle(h.Handler, h.CreateRecipe, http.StatusCreated, &CreateRecipeRequest{}))
	recipes.GET("", Handle(h.Handler, h.ListRecipes, http.StatusOK, &ListRecipesRequest{}))
	recipes.GET("/:id", Handle(h.Handler, h.GetRecipe, http.StatusOK, &RecipeIDRequest{}))
	recipes.PUT("/:id", Handle(h.Handler, h.UpdateRecipe, http.StatusOK, &UpdateRecipeRequest{}))
	recipes.DELETE("/:id", HandleNoContent(h.Handler, h.DeleteRecipe, http.StatusNoContent, &RecipeIDRequest{}))

	admins := g.Group("/admins/:adminId/recipes")
	admins.GET("", Handle(h.Handler, h.ListAdminRecipes, http.StatusOK, &AdminRecipesRequest{}))
	admins.GET("/count", Handle(h.Handler, h.CountAdminRecipes, http.StatusOK, &AdminRecipesRequest{}))
}
