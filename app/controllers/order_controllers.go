package controllers

import (
	"net/http"

	"dukaan/app/repositories"
	"dukaan/pkg/bind"
	"dukaan/pkg/httperr"
	"dukaan/pkg/response"
)

type OrderController struct {
	orders *repositories.OrderRepository
}

func NewOrderController(orders *repositories.OrderRepository) *OrderController {
	return &OrderController{orders: orders}
}

type createOrderInput struct {
	Item   string `json:"item"    validate:"required,min=1,max=255"`
	UserID uint   `json:"user_id" validate:"required"`
}

// Create persists a new order for a user.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var input createOrderInput
	errs, err := bind.JSON(r, &input)
	if err != nil {
		httperr.Write(w, httperr.Validation("Invalid data provided"))
		return
	}
	if len(errs) > 0 {
		httperr.Write(w, httperr.Validation("Invalid data provided").WithExtra(map[string]any{"fields": errs}))
		return
	}

	order, err := c.orders.Create(input.Item, input.UserID)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"id":      order.ID,
		"item":    order.Item,
		"user_id": order.UserID,
	})
}

// Index lists every order sorted by item, ascending.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.All()
	if err != nil {
		httperr.Write(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		out = append(out, map[string]interface{}{
			"id":      o.ID,
			"item":    o.Item,
			"user_id": o.UserID,
		})
	}
	response.OK(w, out)
}

// Show returns one order by ID.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	order, err := c.orders.FindByID(id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"order_id": order.ID,
		"item":     order.Item,
	})
}
