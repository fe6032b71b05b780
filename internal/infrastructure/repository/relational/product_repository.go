// Package relational stores products in a SQL database through gorm.
//
// Every operation runs in its own transaction: writes commit before the call
// returns and any failure rolls the transaction back before it is reported.
package relational

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// productRecord is the row layout of the products table
type productRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;index"`
	Description string `gorm:"type:text"`
	Price       float64
}

func (productRecord) TableName() string {
	return "products"
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

// ProductRepository implements domain.ProductRepository on gorm
type ProductRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		tracer: tracer,
		logger: logger,
	}
}

func (r *ProductRepository) Create(ctx context.Context, in domain.ProductCreate) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	rec := productRecord{Name: in.Name, Description: in.Description, Price: in.Price}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, r.fail(ctx, span, "create product", err)
	}

	span.SetAttributes(attribute.Int64("product.id", rec.ID))
	span.SetStatus(codes.Ok, "Product created successfully")
	r.logger.InfoContext(ctx, "Product created in repository", slog.Int64("product_id", rec.ID))
	return rec.toDomain(), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	var recs []productRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Order("id").Find(&recs).Error
	})
	if err != nil {
		return nil, r.fail(ctx, span, "list products", err)
	}

	products := make([]*domain.Product, len(recs))
	for i, rec := range recs {
		products[i] = rec.toDomain()
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var rec productRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.First(&rec, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, r.fail(ctx, span, "find product", err)
	}

	span.SetStatus(codes.Ok, "Product found")
	return rec.toDomain(), nil
}

// UpdateByID writes the patch with a single UPDATE keyed on id and reads the
// row back inside the same transaction, so no existence check precedes it.
func (r *ProductRepository) UpdateByID(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.UpdateByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var rec productRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !patch.IsEmpty() {
			if err := tx.Model(&productRecord{}).Where("id = ?", id).Updates(patch.Fields()).Error; err != nil {
				return err
			}
		}
		return tx.First(&rec, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, r.fail(ctx, span, "update product", err)
	}

	span.SetStatus(codes.Ok, "Product updated")
	return rec.toDomain(), nil
}

// DeleteByID reads the row and deletes it in one transaction. A concurrent
// delete between the two statements is reported as not found.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var rec productRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&productRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, r.fail(ctx, span, "delete product", err)
	}

	span.SetStatus(codes.Ok, "Product deleted")
	r.logger.InfoContext(ctx, "Product deleted from repository", slog.Int64("product_id", id))
	return rec.toDomain(), nil
}

// Close releases the connection pool
func (r *ProductRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *ProductRepository) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	r.logger.ErrorContext(ctx, "Database operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return domain.PersistenceError(op, err)
}
