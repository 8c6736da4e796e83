package order

import "evea/internal/domain"

type CheckoutRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required,oneof=confirmed cancelled completed"`
}

type OrderList struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
}
