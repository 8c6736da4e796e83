package cart

import (
	"github.com/shopspring/decimal"

	"evea/internal/domain"
)

const maxQuantity = 100

type AddItemRequest struct {
	VendorCardID int64  `json:"vendorCardId" binding:"required,gt=0"`
	Quantity     int    `json:"quantity" binding:"omitempty,min=1,max=100"`
	EventDate    string `json:"eventDate" binding:"omitempty,datetime=2006-01-02"`
	Notes        string `json:"notes" binding:"omitempty,max=500"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=100"`
}

// View is the cart as returned to the client.
type View struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func newView(items []domain.CartItem) *View {
	v := &View{Items: items, Subtotal: decimal.Zero}
	if v.Items == nil {
		v.Items = []domain.CartItem{}
	}
	for _, it := range items {
		v.ItemCount += it.Quantity
		if it.VendorCard != nil {
			v.Subtotal = v.Subtotal.Add(it.VendorCard.PriceFrom.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return v
}
