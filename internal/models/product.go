package models

// ProductCollection is the collection (table) holding products.
const ProductCollection = "product"

// Product is a catalog entry. Only the seed loader creates products.
type Product struct {
	Title       string  `json:"title" bson:"title" binding:"required"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price" binding:"gte=0"`
	Category    string  `json:"category" bson:"category" binding:"required"`
	InStock     bool    `json:"in_stock" bson:"in_stock"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty" binding:"omitempty,url"`
	Base        `bson:",inline"`
}

// NewProduct returns a product that is in stock by default.
func NewProduct(title, description string, price float64, category, image string) Product {
	return Product{
		Title:       title,
		Description: description,
		Price:       price,
		Category:    category,
		InStock:     true,
		Image:       image,
	}
}
