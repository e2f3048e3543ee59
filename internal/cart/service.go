package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/internal/catalog"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the buyer cart operations.
type Service interface {
	AddLine(ctx context.Context, input AddLineInput) (*models.CartLine, error)
	ListLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error
}

// AddLineInput carries the data required to add a product to the cart.
type AddLineInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	tx      txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalogRepo, tx: tx}, nil
}

// AddLine appends a product to the buyer's cart, merging quantities when the
// same variant is already present.
func (s *service) AddLine(ctx context.Context, input AddLineInput) (*models.CartLine, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.CartLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.catalog.WithTx(tx).FindProductByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.SaleStatus != enums.SaleStatusOnSale {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product is not for sale")
		}

		existing, err := repo.FindLineByUserAndProduct(ctx, input.UserID, input.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		if existing != nil {
			merged := existing.Quantity + input.Quantity
			if err := repo.UpdateLineQuantity(ctx, existing.ID, merged); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
			existing.Quantity = merged
			result = existing
			return nil
		}

		line := &models.CartLine{
			ID:        uuid.New(),
			UserID:    input.UserID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
		}
		created, err := repo.CreateLine(ctx, line)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	lines, err := s.repo.FindLinesByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

func (s *service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}

	line, err := s.repo.FindLineByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if line.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cart line does not belong to user")
	}
	if err := s.repo.DeleteLine(ctx, lineID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}
