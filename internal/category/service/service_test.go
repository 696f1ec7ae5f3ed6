package service

import (
	"context"
	"database/sql"
	"testing"

	"sanita/internal/category"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	categories map[int64]*category.Category
	subs       map[int64]*category.Subcategory
	nextID     int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: map[int64]*category.Category{},
		subs:       map[int64]*category.Subcategory{},
		nextID:     1,
	}
}

func (r *fakeCategoryRepo) GetAll(_ context.Context) ([]*category.Category, error) {
	var out []*category.Category
	for _, c := range r.categories {
		cp := *c
		cp.Subcategories = []category.Subcategory{}
		for _, sub := range r.subs {
			if sub.CategoryID == c.ID {
				cp.Subcategories = append(cp.Subcategories, *sub)
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCategoryRepo) GetCategoryByID(_ context.Context, id int64) (*category.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (r *fakeCategoryRepo) CreateCategory(_ context.Context, c *category.Category) error {
	c.ID = r.nextID
	r.nextID++
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) UpdateCategory(_ context.Context, c *category.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return sql.ErrNoRows
	}
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) CreateSubcategory(_ context.Context, sub *category.Subcategory) error {
	sub.ID = r.nextID
	r.nextID++
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeCategoryRepo) UpdateSubcategory(_ context.Context, sub *category.Subcategory) error {
	if _, ok := r.subs[sub.ID]; !ok {
		return sql.ErrNoRows
	}
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeCategoryRepo) DeleteSubcategory(_ context.Context, id int64) error {
	if _, ok := r.subs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.subs, id)
	return nil
}

func TestCreateCategoryGeneratesSlug(t *testing.T) {
	svc := NewService(newFakeCategoryRepo())

	c := &category.Category{Name: "Thiết bị vệ sinh"}
	require.NoError(t, svc.CreateCategory(context.Background(), c))
	assert.Equal(t, "thiet-bi-ve-sinh", c.Slug)
	assert.NotZero(t, c.ID)

	explicit := &category.Category{Name: "Bồn cầu", Slug: "toilets"}
	require.NoError(t, svc.CreateCategory(context.Background(), explicit))
	assert.Equal(t, "toilets", explicit.Slug)
}

func TestListNestsSubcategories(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewService(repo)

	c := &category.Category{Name: "Sen vòi"}
	require.NoError(t, svc.CreateCategory(context.Background(), c))
	require.NoError(t, svc.CreateSubcategory(context.Background(), &category.Subcategory{
		CategoryID: c.ID,
		Name:       "Vòi lavabo",
	}))

	categories, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Len(t, categories[0].Subcategories, 1)
	assert.Equal(t, "voi-lavabo", categories[0].Subcategories[0].Slug)
}

func TestCreateSubcategoryRequiresParent(t *testing.T) {
	svc := NewService(newFakeCategoryRepo())

	err := svc.CreateSubcategory(context.Background(), &category.Subcategory{
		CategoryID: 404,
		Name:       "Vòi sen",
	})
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}

func TestCategoryNotFoundMapping(t *testing.T) {
	svc := NewService(newFakeCategoryRepo())

	err := svc.UpdateCategory(context.Background(), &category.Category{ID: 404, Name: "X"})
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)

	err = svc.DeleteCategory(context.Background(), 404)
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)

	err = svc.UpdateSubcategory(context.Background(), &category.Subcategory{ID: 404, Name: "X"})
	assert.ErrorIs(t, err, category.ErrSubcategoryNotFound)

	err = svc.DeleteSubcategory(context.Background(), 404)
	assert.ErrorIs(t, err, category.ErrSubcategoryNotFound)
}
