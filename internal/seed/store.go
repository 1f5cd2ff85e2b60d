package seed

import (
	"context"
	"database/sql"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
)

// SQLStore writes the seed catalog through the catalog repositories.
type SQLStore struct {
	Categories *repository.CategoryRepo
	Products   *repository.ProductRepo
}

// NewSQLStore binds the catalog repositories to db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		Categories: repository.NewCategoryRepo(db),
		Products:   repository.NewProductRepo(db),
	}
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.Categories.ListAll(ctx)
}

func (s *SQLStore) CreateCategory(ctx context.Context, c *model.Category) error {
	return s.Categories.Create(ctx, c)
}

func (s *SQLStore) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	return s.Products.SlugExists(ctx, slug, 0)
}

func (s *SQLStore) CreateProduct(ctx context.Context, p *model.Product) error {
	return s.Products.Create(ctx, p)
}
