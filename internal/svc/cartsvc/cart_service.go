package cartsvc

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/cart"
)

// CartService holds one line per distinct product.
// Every change is saved before it becomes visible when persistence is enabled.
type CartService struct {
	repo cart.Repository // nil when not persisted
	log  logging.Logger

	mu    sync.Mutex
	lines []domain.CartLine
}

// NewCartService creates the cart. With cfg.Persist the saved lines are restored
// from the repository created by repoFactory.
func NewCartService(ctx context.Context, repoFactory cart.RepositoryFactory, cfg CartConfig) (*CartService, error) {
	svc := &CartService{
		repo:  nil,
		log:   logging.GetLogger("svc.cartsvc.cart_service"),
		lines: nil,
	}

	if !cfg.Persist {
		return svc, nil
	}

	repo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new cart repo: %w", err)
	}

	lines, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	svc.repo = repo
	svc.lines = slices.DeleteFunc(lines, func(l domain.CartLine) bool { return l.Quantity < 1 })

	svc.log.DebugContext(ctx, "cart restored", "lines", len(svc.lines))

	return svc, nil
}

// update applies fn to a copy of the lines, saves the result and then commits it.
func (s *CartService) update(ctx context.Context, fn func([]domain.CartLine) ([]domain.CartLine, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(slices.Clone(s.lines))
	if err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
	}

	s.lines = next

	return nil
}

// Add puts one more of product into the cart and returns its line.
func (s *CartService) Add(ctx context.Context, product domain.Product) (line domain.CartLine, err error) {
	log := s.log.With(logging.Group("product", "id", product.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "add to cart failed", "error", err)
		} else {
			log.DebugContext(ctx, "added to cart", "quantity", line.Quantity)
		}
	}()

	err = s.update(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, product.ID)
		if i < 0 {
			line = domain.NewCartLine(product)

			return append(lines, line), nil
		}

		lines[i].Quantity++
		line = lines[i]

		return lines, nil
	})

	return line, err
}

// Subtract takes one of the product out of the cart, but never the last one.
// Returns ErrLineNotFound if the product is not in the cart.
func (s *CartService) Subtract(ctx context.Context, productID int64) (line domain.CartLine, err error) {
	err = s.update(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, productID)
		if i < 0 {
			return nil, fmt.Errorf("%w: product %d", domain.ErrLineNotFound, productID)
		}

		if lines[i].Quantity > 1 {
			lines[i].Quantity--
		}

		line = lines[i]

		return lines, nil
	})

	return line, err
}

// Remove deletes the product's line whatever its quantity.
// Returns ErrLineNotFound if the product is not in the cart.
func (s *CartService) Remove(ctx context.Context, productID int64) error {
	return s.update(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, productID)
		if i < 0 {
			return nil, fmt.Errorf("%w: product %d", domain.ErrLineNotFound, productID)
		}

		return slices.Delete(lines, i, i+1), nil
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "clear cart failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "cart cleared")
		}
	}()

	return s.update(ctx, func([]domain.CartLine) ([]domain.CartLine, error) {
		return nil, nil
	})
}

// Lines returns a copy of the cart lines in the order products were first added.
func (s *CartService) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.lines)
}

// TotalCost sums price times quantity over all lines.
func (s *CartService) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, line := range s.lines {
		total += line.Subtotal()
	}

	return total
}

// TotalItems sums the quantities.
func (s *CartService) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, line := range s.lines {
		total += line.Quantity
	}

	return total
}

// Close releases the repository.
func (s *CartService) Close() error {
	if s.repo == nil {
		return nil
	}

	return s.repo.Close()
}

func indexOf(lines []domain.CartLine, productID int64) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ProductID == productID })
}
