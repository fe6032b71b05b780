package document

import (
	"testing"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUpdateDocument_OnlySetsPresentFields(t *testing.T) {
	name := "Updated Name"
	doc := updateDocument(domain.ProductPatch{Name: &name})

	set, ok := doc["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %#v", doc)
	}
	if len(set) != 1 || set["name"] != "Updated Name" {
		t.Fatalf("unexpected $set: %#v", set)
	}
}

func TestProductDocument_BSONRoundTrip(t *testing.T) {
	in := productDocument{ID: 42, Name: "Product", Description: "This is a test item.", Price: 12.99}
	raw, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["_id"] != int64(42) {
		t.Fatalf("expected integer _id, got %#v", fields["_id"])
	}

	p := in.toDomain()
	if p.ID != 42 || p.Name != "Product" || p.Price != 12.99 {
		t.Fatalf("unexpected domain product: %+v", p)
	}
}
