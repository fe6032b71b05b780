// Package document stores products in MongoDB. Integer ids come from a
// counters collection so the API shape matches the relational store.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	productsCollection = "products"
	countersCollection = "counters"
	productsCounterID  = "products"
)

type productDocument struct {
	ID          int64   `bson:"_id"`
	Name        string  `bson:"name"`
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
	}
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

// ProductRepository implements domain.ProductRepository on MongoDB
type ProductRepository struct {
	client   *mongo.Client
	products *mongo.Collection
	counters *mongo.Collection
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Connect opens a client against uri and verifies it with a ping
func Connect(ctx context.Context, uri, database string, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	return &ProductRepository{
		client:   client,
		products: db.Collection(productsCollection),
		counters: db.Collection(countersCollection),
		tracer:   tracer,
		logger:   logger,
	}, nil
}

func (r *ProductRepository) nextID(ctx context.Context) (int64, error) {
	var c counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func (r *ProductRepository) Create(ctx context.Context, in domain.ProductCreate) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentProductRepository.Create")
	defer span.End()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, r.fail(ctx, span, "allocate product id", err)
	}

	doc := productDocument{ID: id, Name: in.Name, Description: in.Description, Price: in.Price}
	if _, err := r.products.InsertOne(ctx, doc); err != nil {
		return nil, r.fail(ctx, span, "create product", err)
	}

	span.SetAttributes(attribute.Int64("product.id", id))
	span.SetStatus(codes.Ok, "Product created successfully")
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentProductRepository.FindAll")
	defer span.End()

	cur, err := r.products.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, r.fail(ctx, span, "list products", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.fail(ctx, span, "list products", err)
	}

	products := make([]*domain.Product, len(docs))
	for i, d := range docs {
		products[i] = d.toDomain()
	}
	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentProductRepository.FindByID")
	defer span.End()

	var doc productDocument
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	return r.single(ctx, span, "find product", doc, err)
}

// UpdateByID applies the patch with a single FindOneAndUpdate keyed on id
func (r *ProductRepository) UpdateByID(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentProductRepository.UpdateByID")
	defer span.End()

	var doc productDocument
	var err error
	if patch.IsEmpty() {
		err = r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	} else {
		err = r.products.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			updateDocument(patch),
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	}
	return r.single(ctx, span, "update product", doc, err)
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentProductRepository.DeleteByID")
	defer span.End()

	var doc productDocument
	err := r.products.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	return r.single(ctx, span, "delete product", doc, err)
}

func (r *ProductRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ProductRepository) single(ctx context.Context, span trace.Span, op string, doc productDocument, err error) (*domain.Product, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, r.fail(ctx, span, op, err)
	}
	span.SetStatus(codes.Ok, op+" succeeded")
	return doc.toDomain(), nil
}

func (r *ProductRepository) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	r.logger.ErrorContext(ctx, "Document store operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return domain.PersistenceError(op, err)
}

// updateDocument turns a patch into a $set of the present fields
func updateDocument(patch domain.ProductPatch) bson.M {
	set := bson.M{}
	for k, v := range patch.Fields() {
		set[k] = v
	}
	return bson.M{"$set": set}
}
