package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"marketplace/pkg/catalog/domain/model"
	"marketplace/pkg/common/domain"
)

var (
	ErrInvalidTitle         = errors.New("title must be between 3 and 100 characters")
	ErrInvalidPrice         = errors.New("price must be a positive amount")
	ErrInvalidStockQuantity = errors.New("stock quantity must be a positive number")
	ErrNegativeStock        = errors.New("stock cannot be negative")
	// ErrSellerRequired replaces the old find-or-create default seller
	// fallback: products are never created without an explicit seller.
	ErrSellerRequired = errors.New("an authenticated seller is required to manage products")
)

type NewProductData struct {
	SellerID    uuid.UUID
	Title       string
	Description string
	Category    string
	Country     string
	ImageURL    string
	PriceCents  int64
	Stock       int
}

type ProductService interface {
	CreateProduct(ctx context.Context, data NewProductData) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, title, description, category, imageURL *string) error
	ChangeProductPrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error
	ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error
	ArchiveProduct(ctx context.Context, productID uuid.UUID) error
}

func NewProductService(repo model.ProductRepository, sellers model.SellerDirectory, dispatcher domain.EventDispatcher) ProductService {
	return &productService{repo: repo, sellers: sellers, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	sellers    model.SellerDirectory
	dispatcher domain.EventDispatcher
}

func (s *productService) CreateProduct(ctx context.Context, data NewProductData) (*model.Product, error) {
	if data.SellerID == uuid.Nil {
		return nil, ErrSellerRequired
	}
	if l := len([]rune(data.Title)); l < 3 || l > 100 {
		return nil, ErrInvalidTitle
	}
	if data.PriceCents <= 0 {
		return nil, ErrInvalidPrice
	}
	if data.Stock < 0 {
		return nil, ErrNegativeStock
	}

	exists, err := s.sellers.SellerExists(ctx, data.SellerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrSellerNotFound
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		SellerID:    data.SellerID,
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		Country:     data.Country,
		ImageURL:    data.ImageURL,
		PriceCents:  data.PriceCents,
		Stock:       data.Stock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, SellerID: data.SellerID, Title: data.Title})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID uuid.UUID, title, description, category, imageURL *string) error {
	return s.executeOnProduct(ctx, productID, func(p *model.Product) (domain.Event, error) {
		if !p.Active {
			return nil, model.ErrProductInactive
		}
		if title != nil {
			if l := len([]rune(*title)); l < 3 || l > 100 {
				return nil, ErrInvalidTitle
			}
			p.Title = *title
		}
		if description != nil {
			p.Description = *description
		}
		if category != nil {
			p.Category = *category
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		return nil, nil
	})
}

func (s *productService) ChangeProductPrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error {
	if newPriceCents <= 0 {
		return ErrInvalidPrice
	}
	return s.executeOnProduct(ctx, productID, func(p *model.Product) (domain.Event, error) {
		if !p.Active {
			return nil, model.ErrProductInactive
		}
		old := p.PriceCents
		p.PriceCents = newPriceCents
		return model.ProductPriceChanged{ProductID: productID, OldPriceCents: old, NewPriceCents: newPriceCents}, nil
	})
}

func (s *productService) ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidStockQuantity
	}
	return s.executeOnProduct(ctx, productID, func(p *model.Product) (domain.Event, error) {
		if !p.Active {
			return nil, model.ErrProductInactive
		}
		p.Stock += quantity
		return model.ProductStockChanged{ProductID: productID, ChangeAmount: quantity, NewQuantity: p.Stock}, nil
	})
}

func (s *productService) ArchiveProduct(ctx context.Context, productID uuid.UUID) error {
	return s.executeOnProduct(ctx, productID, func(p *model.Product) (domain.Event, error) {
		if !p.Active {
			return nil, nil
		}
		p.Active = false
		return model.ProductArchived{ProductID: productID}, nil
	})
}

func (s *productService) executeOnProduct(ctx context.Context, productID uuid.UUID, action func(p *model.Product) (domain.Event, error)) error {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return err
	}

	event, err := action(product)
	if err != nil {
		return err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	if event != nil {
		_ = s.dispatcher.Dispatch(event)
	}
	return nil
}
