// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/recipe-service/internal/repository"
	"github.com/deppfellow/recipe-service/internal/server"
)

// Services groups the application services built on the repositories.
type Services struct {
	Recipes *RecipeService
}

// NewService wires every service to its repository.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Recipes: NewRecipeService(s, repos.Recipes),
	}, nil
}
