package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/internal/product/domain"
)

var tracer = otel.Tracer("product-repository")

// TracingProductRepository decorates a product repository with a span per
// call.
type TracingProductRepository struct {
	inner domain.ProductRepository
}

// NewTracingProductRepository wraps a repository with tracing.
func NewTracingProductRepository(inner domain.ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{inner: inner}
}

func (r *TracingProductRepository) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "repository."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracingProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	ctx, span := r.span(ctx, "FindByID", attribute.Int("product.id", id))
	product, err := r.inner.FindByID(ctx, id)
	finish(span, err)
	return product, err
}

func (r *TracingProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.span(ctx, "FindAll")
	products, err := r.inner.FindAll(ctx)
	span.SetAttributes(attribute.Int("product.count", len(products)))
	finish(span, err)
	return products, err
}

func (r *TracingProductRepository) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	ctx, span := r.span(ctx, "FindByCategory", attribute.String("product.category", category))
	products, err := r.inner.FindByCategory(ctx, category)
	finish(span, err)
	return products, err
}

func (r *TracingProductRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	ctx, span := r.span(ctx, "Search", attribute.String("search.term", term))
	products, err := r.inner.Search(ctx, term)
	finish(span, err)
	return products, err
}

func (r *TracingProductRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, span := r.span(ctx, "Categories")
	categories, err := r.inner.Categories(ctx)
	finish(span, err)
	return categories, err
}

func (r *TracingProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.span(ctx, "Create",
		attribute.String("product.name", product.Name),
		attribute.String("product.category", product.Category),
		attribute.Float64("product.price", product.Price),
	)
	err := r.inner.Create(ctx, product)
	if err == nil {
		span.SetAttributes(attribute.Int("product.id", product.ID))
	}
	finish(span, err)
	return err
}

func (r *TracingProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.span(ctx, "Update", attribute.Int("product.id", product.ID))
	err := r.inner.Update(ctx, product)
	finish(span, err)
	return err
}

func (r *TracingProductRepository) Delete(ctx context.Context, id int) error {
	ctx, span := r.span(ctx, "Delete", attribute.Int("product.id", id))
	err := r.inner.Delete(ctx, id)
	finish(span, err)
	return err
}

func (r *TracingProductRepository) Count(ctx context.Context) (int, error) {
	ctx, span := r.span(ctx, "Count")
	count, err := r.inner.Count(ctx)
	finish(span, err)
	return count, err
}
