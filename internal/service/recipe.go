package service

import (
	"context"
	"time"

	"github.com/deppfellow/recipe-service/internal/model"
	"github.com/deppfellow/recipe-service/internal/repository"
	"github.com/deppfellow/recipe-service/internal/server"
	"github.com/rs/zerolog"
)

// RecipeService owns the recipe timestamps and logs every store call.
type RecipeService struct {
	server *server.Server
	repo   *repository.RecipeRepository

	// now is replaced in tests.
	now func() time.Time
}

// NewRecipeService creates a RecipeService over repo using the real clock.
func NewRecipeService(s *server.Server, repo *repository.RecipeRepository) *RecipeService {
	return &RecipeService{
		server: s,
		repo:   repo,
		now:    time.Now,
	}
}

// timestamp is the current UTC time at PostgreSQL timestamp precision, so
// values returned to callers equal what a later read yields.
func (s *RecipeService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create stamps Created/Updated and persists the recipe.
func (s *RecipeService) Create(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	start := time.Now()
	now := s.timestamp()
	recipe.Created = now
	recipe.Updated = now

	created, err := s.repo.Create(ctx, recipe)
	s.observe(ctx, "create", start, err).
		Int64("admin_id", recipe.AdminID).
		Func(func(e *zerolog.Event) {
			if created != nil {
				e.Int64("recipe_id", created.ID)
			}
		}).
		Msg("create recipe")

	return created, err
}

// Get reads one recipe. A missing id is sqlerr.ErrNotFound.
func (s *RecipeService) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	start := time.Now()

	recipe, err := s.repo.Read(ctx, id)
	s.observe(ctx, "read", start, err).Int64("recipe_id", id).Msg("read recipe")

	return recipe, err
}

// List returns every stored recipe.
func (s *RecipeService) List(ctx context.Context) ([]model.Recipe, error) {
	start := time.Now()

	recipes, err := s.repo.FindAll(ctx)
	s.observe(ctx, "find_all", start, err).Int("count", len(recipes)).Msg("list recipes")

	return recipes, err
}

// ListByAdmin returns the recipes whose AdminID is adminID.
func (s *RecipeService) ListByAdmin(ctx context.Context, adminID int64) ([]model.Recipe, error) {
	start := time.Now()

	recipes, err := s.repo.FindAllByAdmin(ctx, adminID)
	s.observe(ctx, "find_all_by_admin", start, err).
		Int64("admin_id", adminID).
		Int("count", len(recipes)).
		Msg("list recipes by admin")

	return recipes, err
}

// Update stamps Updated, writes the recipe and returns the stored row.
// Created is never written by an update, so the re-read carries the original.
func (s *RecipeService) Update(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	start := time.Now()
	recipe.Updated = s.timestamp()

	err := s.repo.Update(ctx, recipe)
	s.observe(ctx, "update", start, err).Int64("recipe_id", recipe.ID).Msg("update recipe")
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Delete removes the recipe with the given id.
func (s *RecipeService) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	err := s.repo.Delete(ctx, id)
	s.observe(ctx, "delete", start, err).Int64("recipe_id", id).Msg("delete recipe")

	return err
}

// CountByAdmin counts the recipes whose AdminID is adminID.
func (s *RecipeService) CountByAdmin(ctx context.Context, adminID int64) (int64, error) {
	start := time.Now()

	count, err := s.repo.CountByAdmin(ctx, adminID)
	s.observe(ctx, "count_by_admin", start, err).
		Int64("admin_id", adminID).
		Int64("count", count).
		Msg("count recipes by admin")

	return count, err
}

// observe picks the log level for a finished store call: error on failure,
// warn when slower than the configured threshold, debug otherwise.
func (s *RecipeService) observe(ctx context.Context, op string, start time.Time, err error) *zerolog.Event {
	logger := s.logger(ctx)
	duration := time.Since(start)

	var event *zerolog.Event
	switch {
	case err != nil:
		event = logger.Error().Err(err)
	case s.isSlow(duration):
		event = logger.Warn().Bool("slow_query", true)
	default:
		event = logger.Debug()
	}

	return event.
		Str("operation", "recipe."+op).
		Dur("duration", duration)
}

func (s *RecipeService) isSlow(d time.Duration) bool {
	cfg := s.server.Config
	if cfg == nil || cfg.Observability == nil {
		return false
	}
	threshold := cfg.Observability.Logging.SlowQueryThreshold
	return threshold > 0 && d >= threshold
}

// logger prefers the request-scoped logger stored by the context middleware.
func (s *RecipeService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if s.server.Logger != nil {
		return s.server.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
