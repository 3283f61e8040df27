// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Every repository receives a database.ConnectionProvider instead of the
// pool itself, so tests can substitute a mock connection.
package repository

import (
	"github.com/deppfellow/recipe-service/internal/database"
	"github.com/deppfellow/recipe-service/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Recipes *RecipeRepository
}

// NewRepositories constructs the repository container from the pool held by
// the application container.
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesWithProvider(s.DB)
}

// NewRepositoriesWithProvider constructs the container over any provider.
func NewRepositoriesWithProvider(provider database.ConnectionProvider) *Repositories {
	return &Repositories{
		Recipes: NewRecipeRepository(provider),
	}
}
