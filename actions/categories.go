package actions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store"
)

type CategoryService struct {
	categories CategoryStore
	settings
}

func NewCategoryService(categories CategoryStore, opts ...Option) *CategoryService {
	return &CategoryService{categories: categories, settings: newSettings(opts)}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (category models.Category, err error) {
	defer observe("create_category", time.Now(), &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ValidationError{Field: "name", Message: "is required"}
	}
	category, err = s.categories.InsertCategory(ctx, models.Category{Name: name})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Category{}, ValidationError{Field: "name", Message: "already exists"}
		}
		return models.Category{}, persistence("create category", err)
	}
	return category, nil
}

// GetAllCategories returns every category sorted by name.
func (s *CategoryService) GetAllCategories(ctx context.Context) (categories []models.Category, err error) {
	defer observe("list_categories", time.Now(), &err)

	categories, err = s.categories.ListCategories(ctx)
	if err != nil {
		return nil, persistence("list categories", err)
	}
	return categories, nil
}
