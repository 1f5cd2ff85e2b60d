package service

import (
	"context"
	"fmt"
	"time"

	"github.com/halchash/storefront/internal/utils"
)

// SlugExistsFunc reports whether slug is used by a row other than excludeID.
type SlugExistsFunc func(ctx context.Context, slug string, excludeID uint64) (bool, error)

// ResolveSlug derives a slug from name.  On collision a new row (id 0)
// gets "-<unix time>" appended and an existing row gets "-<id>".
func ResolveSlug(ctx context.Context, exists SlugExistsFunc, name string, id uint64, now time.Time) (string, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return "", invalid("Name must contain at least one letter or digit")
	}
	taken, err := exists(ctx, slug, id)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}
	if id == 0 {
		return fmt.Sprintf("%s-%d", slug, now.Unix()), nil
	}
	return fmt.Sprintf("%s-%d", slug, id), nil
}
