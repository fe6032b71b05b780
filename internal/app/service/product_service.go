package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/products-crud-api/internal/app/dto"
	"github.com/mrops-br/products-crud-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, in domain.ProductCreate) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", in.Name),
		attribute.Float64("product.price", in.Price),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", in.Name),
		slog.Float64("price", in.Price),
	)

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.failed(ctx, span, "create", err)
	}

	s.productCreatedCounter.Add(ctx, 1)
	s.record(ctx, "create", "success")

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.Int64("product_id", product.ID),
	)

	span.SetAttributes(attribute.Int64("product.id", product.ID))
	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.failed(ctx, span, "read", err, slog.Int64("product_id", id))
	}

	s.record(ctx, "read", "success")
	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.failed(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.record(ctx, "list", "success")

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// UpdateProduct applies a partial update to a product
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", id),
		attribute.Int("product.patch.fields", len(patch.Fields())),
	)

	product, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, s.failed(ctx, span, "update", err, slog.Int64("product_id", id))
	}

	s.record(ctx, "update", "success")
	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// DeleteProduct removes a product and returns its last values
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, s.failed(ctx, span, "delete", err, slog.Int64("product_id", id))
	}

	s.record(ctx, "delete", "success")
	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return dto.ToProductResponse(product), nil
}

// failed records a failed operation. Not found is an expected outcome and is
// logged at warn; anything else is logged with its full error.
func (s *ProductService) failed(ctx context.Context, span trace.Span, op string, err error, attrs ...any) error {
	if errors.Is(err, domain.ErrProductNotFound) {
		span.SetStatus(codes.Error, "Product not found")
		s.logger.WarnContext(ctx, "Product not found", attrs...)
		s.record(ctx, op, "not_found")
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "Product "+op+" failed")
	s.logger.ErrorContext(ctx, "Product "+op+" failed",
		append(attrs, slog.String("error", err.Error()))...,
	)
	s.record(ctx, op, "failure")
	return err
}

func (s *ProductService) record(ctx context.Context, op, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("result", result),
		),
	)
}
