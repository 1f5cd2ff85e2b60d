package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
)

// HeroTx is the storage seen by one hero replacement.
type HeroTx interface {
	ClearHeroOrder(ctx context.Context) error
	// SetHeroOrder reports false when no product has the given id.
	SetHeroOrder(ctx context.Context, productID uint64, position int) (bool, error)
}

// HeroStore opens hero transactions.
type HeroStore interface {
	InHeroTx(ctx context.Context, fn func(HeroTx) error) error
}

// HeroService curates the homepage carousel.
type HeroService struct {
	store HeroStore
	max   int
	log   *slog.Logger
}

// NewHeroService returns a HeroService allowing at most limit hero products.
func NewHeroService(store HeroStore, limit int, log *slog.Logger) *HeroService {
	if limit <= 0 {
		limit = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &HeroService{store: store, max: limit, log: log}
}

// Max is the carousel size limit.
func (s *HeroService) Max() int { return s.max }

// ReplaceHero makes ids the complete carousel, in order.  Every previous
// hero product not in ids loses its position.  An empty list clears the
// carousel.
func (s *HeroService) ReplaceHero(ctx context.Context, ids []uint64) error {
	if len(ids) > s.max {
		return invalid("Maximum %d products allowed in hero section", s.max)
	}
	if lo.Contains(ids, 0) {
		return invalid("Invalid product id in hero list")
	}
	if len(lo.Uniq(ids)) != len(ids) {
		return invalid("Duplicate product in hero list")
	}

	err := s.store.InHeroTx(ctx, func(tx HeroTx) error {
		if err := tx.ClearHeroOrder(ctx); err != nil {
			return err
		}
		for i, id := range ids {
			ok, err := tx.SetHeroOrder(ctx, id, i+1)
			if err != nil {
				return err
			}
			if !ok {
				return ErrHeroProductNotFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrHeroProductNotFound) {
		s.log.ErrorContext(ctx, "hero update failed", "ids", ids, "error", err)
	}
	return err
}
