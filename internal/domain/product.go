package domain

// Product represents the product entity
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
}

// ProductCreate carries the fields required to create a product
type ProductCreate struct {
	Name        string
	Description string
	Price       float64
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
}

// NewProduct builds an unsaved product from a create request
func NewProduct(in ProductCreate) *Product {
	return &Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
}

// IsEmpty reports whether the patch sets no field
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil
}

// Apply overwrites the fields of product that are present in the patch
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
}

// Fields returns the patch as column name to value, only for present fields
func (p ProductPatch) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	return fields
}
