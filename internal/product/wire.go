//go:build wireinject
// +build wireinject

package product

import (
	"github.com/google/wire"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/product/delivery/http"
	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/product/repository"
	"github.com/tair/storefront/internal/product/usecase/command"
	"github.com/tair/storefront/internal/product/usecase/query"
	"github.com/tair/storefront/internal/storage"
)

// ProvideProductRepository provides the catalog repository with tracing
func ProvideProductRepository(adapter *storage.Adapter) domain.ProductRepository {
	return repository.NewTracingProductRepository(repository.NewCollectionProductRepository(adapter))
}

// Command handler providers
func ProvideCreateProductHandler(repo domain.ProductRepository, bus *events.Bus) *command.CreateProductHandler {
	return command.NewCreateProductHandler(repo, bus)
}

func ProvideUpdateProductHandler(repo domain.ProductRepository, bus *events.Bus) *command.UpdateProductHandler {
	return command.NewUpdateProductHandler(repo, bus)
}

func ProvideDeleteProductHandler(repo domain.ProductRepository, bus *events.Bus) *command.DeleteProductHandler {
	return command.NewDeleteProductHandler(repo, bus)
}

// Query handler providers
func ProvideGetProductHandler(repo domain.ProductRepository) *query.GetProductHandler {
	return query.NewGetProductHandler(repo)
}

func ProvideListProductsHandler(repo domain.ProductRepository) *query.ListProductsHandler {
	return query.NewListProductsHandler(repo)
}

func ProvideListCategoriesHandler(repo domain.ProductRepository) *query.ListCategoriesHandler {
	return query.NewListCategoriesHandler(repo)
}

func ProvideGetStatsHandler(repo domain.ProductRepository) *query.GetStatsHandler {
	return query.NewGetStatsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateProductHandler,
	ProvideUpdateProductHandler,
	ProvideDeleteProductHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetProductHandler,
	ProvideListProductsHandler,
	ProvideListCategoriesHandler,
	ProvideGetStatsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes the catalog HTTP handler with all
// dependencies
func InitializeHTTPHandler(adapter *storage.Adapter, bus *events.Bus) (*http.ProductHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewProductHandler,
	)
	return nil, nil
}
