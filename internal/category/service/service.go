package service

import (
	"context"
	"database/sql"
	"errors"

	catalogservice "sanita/internal/catalog/service"
	"sanita/internal/category"
)

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*category.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*category.Category, error)
	CreateCategory(ctx context.Context, c *category.Category) error
	UpdateCategory(ctx context.Context, c *category.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CreateSubcategory(ctx context.Context, sub *category.Subcategory) error
	UpdateSubcategory(ctx context.Context, sub *category.Subcategory) error
	DeleteSubcategory(ctx context.Context, id int64) error
}

type Service struct {
	repo CategoryRepository
}

func NewService(repo CategoryRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*category.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *category.Category) error {
	if c.Slug == "" {
		c.Slug = catalogservice.Slugify(c.Name)
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *category.Category) error {
	if c.Slug == "" {
		c.Slug = catalogservice.Slugify(c.Name)
	}
	return mapNoRows(s.repo.UpdateCategory(ctx, c), category.ErrCategoryNotFound)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return mapNoRows(s.repo.DeleteCategory(ctx, id), category.ErrCategoryNotFound)
}

// CreateSubcategory checks the parent first so a bad category id comes back
// as a domain error instead of a constraint violation.
func (s *Service) CreateSubcategory(ctx context.Context, sub *category.Subcategory) error {
	if _, err := s.repo.GetCategoryByID(ctx, sub.CategoryID); err != nil {
		return mapNoRows(err, category.ErrCategoryNotFound)
	}
	if sub.Slug == "" {
		sub.Slug = catalogservice.Slugify(sub.Name)
	}
	return s.repo.CreateSubcategory(ctx, sub)
}

func (s *Service) UpdateSubcategory(ctx context.Context, sub *category.Subcategory) error {
	if sub.Slug == "" {
		sub.Slug = catalogservice.Slugify(sub.Name)
	}
	return mapNoRows(s.repo.UpdateSubcategory(ctx, sub), category.ErrSubcategoryNotFound)
}

func (s *Service) DeleteSubcategory(ctx context.Context, id int64) error {
	return mapNoRows(s.repo.DeleteSubcategory(ctx, id), category.ErrSubcategoryNotFound)
}

func mapNoRows(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
