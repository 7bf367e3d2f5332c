package models

// OrderCollection is the collection (table) holding orders.
const OrderCollection = "order"

// OrderItem is a denormalized snapshot of a product line. ProductID is not
// checked against the catalog.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Title     string  `json:"title" bson:"title"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// Customer is who placed the order.
type Customer struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
}

// Order is write-only from the API's point of view.
type Order struct {
	Items    []OrderItem `json:"items" bson:"items"`
	Customer Customer    `json:"customer" bson:"customer"`
	Note     string      `json:"note,omitempty" bson:"note,omitempty"`
	Base     `bson:",inline"`
}

// OrderItemRequest is one inbound order line. Pointer fields are required
// to be present, but "" and 0 are accepted values.
type OrderItemRequest struct {
	ProductID *string  `json:"product_id" binding:"required"`
	Title     *string  `json:"title" binding:"required"`
	Price     *float64 `json:"price" binding:"required"`
	Quantity  int      `json:"quantity" binding:"min=1"`
}

// CustomerRequest is the inbound customer block.
type CustomerRequest struct {
	Name    *string `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Address string  `json:"address"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Customer CustomerRequest    `json:"customer"`
	Note     string             `json:"note"`
}

// ToOrder copies the payload verbatim into the stored shape. The store
// assigns the identifier.
func (r *CreateOrderRequest) ToOrder() Order {
	items := make([]OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		var price float64
		if it.Price != nil {
			price = *it.Price
		}
		items = append(items, OrderItem{
			ProductID: deref(it.ProductID),
			Title:     deref(it.Title),
			Price:     price,
			Quantity:  it.Quantity,
		})
	}
	return Order{
		Items: items,
		Customer: Customer{
			Name:    deref(r.Customer.Name),
			Email:   r.Customer.Email,
			Address: r.Customer.Address,
		},
		Note: r.Note,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
