package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/pkg/catalog/domain/model"
	"marketplace/pkg/catalog/domain/service"
	"marketplace/pkg/common/domain"
)

type productRepo struct {
	products map[uuid.UUID]*model.Product
}

func newProductRepo() *productRepo {
	return &productRepo{products: map[uuid.UUID]*model.Product{}}
}

func (r *productRepo) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *productRepo) Create(_ context.Context, product *model.Product) error {
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *productRepo) Update(_ context.Context, product *model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return model.ErrProductNotFound
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *productRepo) Find(_ context.Context, id uuid.UUID) (*model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *productRepo) List(_ context.Context, _ model.ListFilter) ([]*model.Product, error) {
	products := make([]*model.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	return products, nil
}

type sellerDirectory struct {
	sellers map[uuid.UUID]bool
}

func (d *sellerDirectory) SellerExists(_ context.Context, id uuid.UUID) (bool, error) {
	return d.sellers[id], nil
}

type recordingDispatcher struct {
	events []domain.Event
}

func (d *recordingDispatcher) Dispatch(event domain.Event) error {
	d.events = append(d.events, event)
	return nil
}

func setup() (service.ProductService, *productRepo, uuid.UUID, *recordingDispatcher) {
	repo := newProductRepo()
	sellerID := uuid.New()
	sellers := &sellerDirectory{sellers: map[uuid.UUID]bool{sellerID: true}}
	dispatcher := &recordingDispatcher{}
	return service.NewProductService(repo, sellers, dispatcher), repo, sellerID, dispatcher
}

func validProduct(sellerID uuid.UUID) service.NewProductData {
	return service.NewProductData{
		SellerID:   sellerID,
		Title:      "Empanada de Pino",
		Category:   "Comida",
		PriceCents: 250000,
		Stock:      10,
	}
}

func TestCreateProduct(t *testing.T) {
	svc, repo, sellerID, dispatcher := setup()

	product, err := svc.CreateProduct(context.Background(), validProduct(sellerID))

	require.NoError(t, err)
	assert.True(t, product.Active)
	assert.Equal(t, sellerID, product.SellerID)
	assert.Contains(t, repo.products, product.ID)
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "ProductCreated", dispatcher.events[0].Type())
}

func TestCreateProductRequiresSeller(t *testing.T) {
	svc, _, _, _ := setup()

	data := validProduct(uuid.Nil)
	_, err := svc.CreateProduct(context.Background(), data)
	assert.ErrorIs(t, err, service.ErrSellerRequired)

	// A well-formed but unregistered seller id is rejected too; there is
	// no silent fallback seller.
	data.SellerID = uuid.New()
	_, err = svc.CreateProduct(context.Background(), data)
	assert.ErrorIs(t, err, model.ErrSellerNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, sellerID, _ := setup()
	ctx := context.Background()

	data := validProduct(sellerID)
	data.Title = "ab"
	_, err := svc.CreateProduct(ctx, data)
	assert.ErrorIs(t, err, service.ErrInvalidTitle)

	data = validProduct(sellerID)
	data.Title = strings.Repeat("x", 101)
	_, err = svc.CreateProduct(ctx, data)
	assert.ErrorIs(t, err, service.ErrInvalidTitle)

	data = validProduct(sellerID)
	data.PriceCents = 0
	_, err = svc.CreateProduct(ctx, data)
	assert.ErrorIs(t, err, service.ErrInvalidPrice)

	data = validProduct(sellerID)
	data.Stock = -1
	_, err = svc.CreateProduct(ctx, data)
	assert.ErrorIs(t, err, service.ErrNegativeStock)
}

func TestUpdateProductPatchesOnlyGivenFields(t *testing.T) {
	svc, repo, sellerID, _ := setup()
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, validProduct(sellerID))
	require.NoError(t, err)

	title := "Empanada Casera"
	require.NoError(t, svc.UpdateProduct(ctx, product.ID, &title, nil, nil, nil))

	stored := repo.products[product.ID]
	assert.Equal(t, "Empanada Casera", stored.Title)
	assert.Equal(t, "Comida", stored.Category)
	assert.Equal(t, int64(250000), stored.PriceCents)
}

func TestChangeProductPrice(t *testing.T) {
	svc, repo, sellerID, dispatcher := setup()
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, validProduct(sellerID))
	require.NoError(t, err)

	require.NoError(t, svc.ChangeProductPrice(ctx, product.ID, 300000))
	assert.Equal(t, int64(300000), repo.products[product.ID].PriceCents)

	assert.ErrorIs(t, svc.ChangeProductPrice(ctx, product.ID, 0), service.ErrInvalidPrice)
	assert.ErrorIs(t, svc.ChangeProductPrice(ctx, uuid.New(), 300000), model.ErrProductNotFound)

	var change model.ProductPriceChanged
	for _, event := range dispatcher.events {
		if priced, ok := event.(model.ProductPriceChanged); ok {
			change = priced
		}
	}
	assert.Equal(t, int64(250000), change.OldPriceCents)
	assert.Equal(t, int64(300000), change.NewPriceCents)
}

func TestReceiveStock(t *testing.T) {
	svc, repo, sellerID, _ := setup()
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, validProduct(sellerID))
	require.NoError(t, err)

	require.NoError(t, svc.ReceiveStock(ctx, product.ID, 15))
	assert.Equal(t, 25, repo.products[product.ID].Stock)

	assert.ErrorIs(t, svc.ReceiveStock(ctx, product.ID, 0), service.ErrInvalidStockQuantity)
	assert.ErrorIs(t, svc.ReceiveStock(ctx, product.ID, -5), service.ErrInvalidStockQuantity)
}

func TestArchiveProduct(t *testing.T) {
	svc, repo, sellerID, _ := setup()
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, validProduct(sellerID))
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveProduct(ctx, product.ID))
	assert.False(t, repo.products[product.ID].Active)

	// Archiving twice is a no-op, but mutating an archived product fails.
	require.NoError(t, svc.ArchiveProduct(ctx, product.ID))
	assert.ErrorIs(t, svc.ChangeProductPrice(ctx, product.ID, 300000), model.ErrProductInactive)
	assert.ErrorIs(t, svc.ReceiveStock(ctx, product.ID, 5), model.ErrProductInactive)
}
