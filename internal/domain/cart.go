package domain

// CartItem is a single product entry in a cart. Catalog fields (Name,
// Description, Image, Price) are fixed when the item is first added;
// only Quantity changes after that.
type CartItem struct {
	ID          string `json:"id"`
	CartID      string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int32  `json:"quantity"`
}

// UnitTotal is the price of a single unit.
func (i CartItem) UnitTotal() Money {
	return NewMoney(i.Price)
}

// LineTotal is the price of the line: unit price times quantity.
func (i CartItem) LineTotal() Money {
	return NewMoney(i.Price * int64(i.Quantity))
}

// Cart is a named collection of line items. Carts come into existence on
// first reference, so an "empty cart" and a "cart that was never touched"
// look the same to callers.
type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// TotalItems is the number of units across all lines. An item left at
// quantity zero contributes nothing, consistent with SubTotal.
func (c Cart) TotalItems() int32 {
	var total int32
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// SubTotal sums every line total. Empty cart yields zero.
func (c Cart) SubTotal() Money {
	var amount int64
	for _, item := range c.Items {
		amount += item.Price * int64(item.Quantity)
	}
	return NewMoney(amount)
}

// IsEmpty reports whether the cart has no lines at all.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
