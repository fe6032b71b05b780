package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRepo() *ProductRepository {
	return NewProductRepository(noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProductRepository_CreateThenFind(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, domain.ProductCreate{Name: "Product", Description: "This is a test item.", Price: 12.99})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := r.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if *got != *created {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
}

func TestProductRepository_IDsAreNotReused(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	first, _ := r.Create(ctx, domain.ProductCreate{Name: "a"})
	if _, err := r.DeleteByID(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, _ := r.Create(ctx, domain.ProductCreate{Name: "b"})
	if second.ID == first.ID {
		t.Fatalf("expected a fresh id after delete, got %d twice", first.ID)
	}
}

func TestProductRepository_MissingIDIsNotFound(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	if _, err := r.FindByID(ctx, -1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("find: expected ErrProductNotFound, got %v", err)
	}
	if _, err := r.DeleteByID(ctx, 1<<40); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("delete: expected ErrProductNotFound, got %v", err)
	}
	name := "x"
	if _, err := r.UpdateByID(ctx, 7, domain.ProductPatch{Name: &name}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("update: expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_PartialUpdate(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	p, _ := r.Create(ctx, domain.ProductCreate{Name: "n", Description: "d", Price: 3})
	price := 4.5
	updated, err := r.UpdateByID(ctx, p.ID, domain.ProductPatch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "n" || updated.Description != "d" || updated.Price != 4.5 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestProductRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Create(ctx, domain.ProductCreate{Name: "p"})
		}()
	}
	wg.Wait()

	all, _ := r.FindAll(ctx)
	if len(all) != 100 {
		t.Fatalf("expected 100 products, got %d", len(all))
	}
	for i, p := range all {
		if p.ID != int64(i+1) {
			t.Fatalf("expected sorted dense ids, got %d at %d", p.ID, i)
		}
	}
}

func TestProductRepository_DeleteReturnsLastValues(t *testing.T) {
	r := newRepo()
	ctx := context.Background()

	created, _ := r.Create(ctx, domain.ProductCreate{Name: "Gone", Description: "soon", Price: 3})
	deleted, err := r.DeleteByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if *deleted != *created {
		t.Fatalf("expected last known values %+v, got %+v", created, deleted)
	}
	if _, err := r.DeleteByID(ctx, created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := r.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
