package domain

import (
	"errors"
	"testing"
)

func TestProductPatch_EmptyLeavesProductUnchanged(t *testing.T) {
	p := &Product{ID: 1, Name: "a", Description: "b", Price: 1.5}
	patch := ProductPatch{}
	if !patch.IsEmpty() {
		t.Fatalf("expected empty patch")
	}
	patch.Apply(p)
	if p.Name != "a" || p.Description != "b" || p.Price != 1.5 {
		t.Fatalf("unexpected product after empty patch: %+v", p)
	}
	if len(patch.Fields()) != 0 {
		t.Fatalf("expected no fields, got %v", patch.Fields())
	}
}

func TestProductPatch_PartialOnlyTouchesPresentFields(t *testing.T) {
	p := &Product{ID: 1, Name: "a", Description: "b", Price: 1.5}
	name := "Updated Name"
	patch := ProductPatch{Name: &name}
	patch.Apply(p)
	if p.Name != "Updated Name" || p.Description != "b" || p.Price != 1.5 {
		t.Fatalf("unexpected product after partial patch: %+v", p)
	}
	fields := patch.Fields()
	if len(fields) != 1 || fields["name"] != "Updated Name" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestProductPatch_ZeroValuesAreApplied(t *testing.T) {
	p := &Product{ID: 1, Name: "a", Description: "b", Price: 1.5}
	empty := ""
	zero := 0.0
	ProductPatch{Description: &empty, Price: &zero}.Apply(p)
	if p.Description != "" || p.Price != 0 {
		t.Fatalf("expected explicit zero values to be applied: %+v", p)
	}
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("price", "field required")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ValidationError to match ErrValidation")
	}
	if err.Error() != "price: field required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPersistenceError_WrapsBoth(t *testing.T) {
	cause := errors.New("connection refused")
	err := PersistenceError("create product", cause)
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected error to wrap both sentinel and cause: %v", err)
	}
}
