package service

import (
	"context"
	"errors"

	categoryerrors "tripdesk/internal/categories/errors"
	"tripdesk/internal/categories/repository"
	"tripdesk/internal/categories/validator"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/model"
	"tripdesk/pkg/sanitizer"
	"tripdesk/pkg/storage"
)

// maxChainDepth bounds the ancestor walk alongside the visited set, so a
// corrupted tree can never pin a request.
const maxChainDepth = 50

type CategoryService interface {
	List(ctx context.Context) ([]*model.CategoryView, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
	// ResolveProperties walks the parent chain from the given category and
	// accumulates property definitions leaf first. Same-named properties on
	// different levels all surface; nothing is de-duplicated.
	ResolveProperties(ctx context.Context, id string) ([]model.CategoryProperty, error)
}

type categoryService struct {
	repo      repository.CategoryRepository
	validator *validator.CategoryValidator
	store     storage.ObjectStore
	cfg       *config.Config
}

func NewCategoryService(
	repo repository.CategoryRepository,
	validator *validator.CategoryValidator,
	store storage.ObjectStore,
	cfg *config.Config,
) CategoryService {
	return &categoryService{
		repo:      repo,
		validator: validator,
		store:     store,
		cfg:       cfg,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*model.CategoryView, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list categories", "error", err)
		return nil, apperrors.Internal("Failed to retrieve categories", err)
	}

	parentIDs := make([]string, 0)
	seen := map[string]struct{}{}
	for _, c := range categories {
		if c.Parent == "" {
			continue
		}
		if _, ok := seen[c.Parent]; ok {
			continue
		}
		seen[c.Parent] = struct{}{}
		parentIDs = append(parentIDs, c.Parent)
	}

	parents := map[string]*model.Category{}
	if len(parentIDs) > 0 {
		parents, err = s.repo.FindByIDs(ctx, parentIDs)
		if err != nil {
			s.cfg.Log.Error("Failed to resolve category parents", "error", err)
			return nil, apperrors.Internal("Failed to retrieve categories", err)
		}
	}

	views := make([]*model.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, &model.CategoryView{
			ID:         c.ID,
			Name:       c.Name,
			Parent:     parents[c.Parent],
			Properties: c.Properties,
			Image:      c.Image,
		})
	}
	return views, nil
}

func (s *categoryService) Create(ctx context.Context, category *model.Category) error {
	s.sanitize(category)
	if err := s.validator.Validate(category); err != nil {
		return apperrors.Validation("Invalid category input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, category); err != nil {
		s.cfg.Log.Error("Failed to create category", "error", err)
		return apperrors.Internal("Failed to create category", err)
	}

	s.cfg.Log.Info("Category created successfully", "id", category.ID, "name", category.Name)
	return nil
}

func (s *categoryService) Update(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		return apperrors.InvalidInput("Category ID cannot be empty")
	}
	s.sanitize(category)

	existing, err := s.repo.FindByID(ctx, category.ID)
	if err != nil {
		return s.mapLookupError(err, category.ID)
	}

	if err := s.validator.Validate(category); err != nil {
		return apperrors.Validation("Invalid category input", map[string]any{"error": err.Error()})
	}

	// A replaced image is deleted from storage; the database write stays
	// authoritative when cleanup fails.
	if existing.Image != "" && existing.Image != category.Image {
		if err := s.store.Delete(ctx, existing.Image); err != nil {
			s.cfg.Log.Warn("Failed to delete replaced category image", "id", category.ID, "error", err)
		}
	}

	if err := s.repo.Update(ctx, category.ID, category); err != nil {
		if errors.Is(err, categoryerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Category", category.ID)
		}
		s.cfg.Log.Error("Failed to update category", "id", category.ID, "error", err)
		return apperrors.Internal("Failed to update category", err)
	}

	s.cfg.Log.Info("Category updated successfully", "id", category.ID, "name", category.Name)
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Category ID cannot be empty")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, categoryerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Category", id)
		}
		s.cfg.Log.Error("Failed to delete category", "id", id, "error", err)
		return apperrors.Internal("Failed to delete category", err)
	}

	if category.Image != "" {
		if err := s.store.Delete(ctx, category.Image); err != nil {
			s.cfg.Log.Warn("Failed to delete category image", "id", id, "error", err)
		}
	}

	s.cfg.Log.Info("Category deleted successfully", "id", id)
	return nil
}

func (s *categoryService) ResolveProperties(ctx context.Context, id string) ([]model.CategoryProperty, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Category ID cannot be empty")
	}

	leaf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	properties := []model.CategoryProperty{}
	visited := map[string]struct{}{}
	current := leaf
	for depth := 0; depth < maxChainDepth; depth++ {
		if _, ok := visited[current.ID]; ok {
			s.cfg.Log.Warn("Category parent chain contains a cycle", "id", id, "at", current.ID)
			break
		}
		visited[current.ID] = struct{}{}
		properties = append(properties, current.Properties...)

		if current.Parent == "" {
			break
		}
		parent, err := s.repo.FindByID(ctx, current.Parent)
		if err != nil {
			// A dangling parent reference ends the walk; the chain collected so
			// far is still valid.
			if errors.Is(err, categoryerrors.ErrNotFound) || errors.Is(err, categoryerrors.ErrInvalidID) {
				break
			}
			s.cfg.Log.Error("Failed to resolve category parent", "id", current.Parent, "error", err)
			return nil, apperrors.Internal("Failed to resolve category properties", err)
		}
		current = parent
	}

	return properties, nil
}

func (s *categoryService) sanitize(category *model.Category) {
	category.Name = sanitizer.NormalizeString(category.Name)
	for i := range category.Properties {
		category.Properties[i].Name = sanitizer.NormalizeString(category.Properties[i].Name)
	}
}

func (s *categoryService) mapLookupError(err error, id string) error {
	if errors.Is(err, categoryerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Category", id)
	}
	if errors.Is(err, categoryerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid category ID format")
	}
	s.cfg.Log.Error("Failed to retrieve category", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve category", err)
}
