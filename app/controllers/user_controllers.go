package controllers

import (
	"net/http"
	"strconv"

	"dukaan/app/models"
	"dukaan/app/repositories"
	"dukaan/pkg/bind"
	"dukaan/pkg/httperr"
	"dukaan/pkg/logger"
	"dukaan/pkg/response"
	"dukaan/pkg/router"
)

type UserController struct {
	users  *repositories.UserRepository
	orders *repositories.OrderRepository
}

func NewUserController(users *repositories.UserRepository, orders *repositories.OrderRepository) *UserController {
	return &UserController{users: users, orders: orders}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uint, error) {
	raw := router.Param(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, httperr.Validation("Invalid data provided")
	}
	return uint(id), nil
}

func userProjection(u models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}

// Index lists every user as an {id,name,email} projection.
func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.All()
	if err != nil {
		httperr.Write(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, userProjection(u))
	}
	response.OK(w, out)
}

// Show returns one user by ID.
func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	user, err := c.users.FindByID(id)
	if err != nil {
		httperr.Write(w, err)
		return
	}
	response.OK(w, userProjection(*user))
}

// Orders returns the user's orders as a flat list of item labels.
func (c *UserController) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	user, orders, err := c.users.Orders(id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	items := make([]string, 0, len(orders))
	for _, o := range orders {
		items = append(items, o.Item)
	}
	response.OK(w, map[string]interface{}{
		"user":   user.Name,
		"orders": items,
	})
}

// Details returns the user with their order items inline.
func (c *UserController) Details(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	user, orders, err := c.users.Orders(id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	items := make([]string, 0, len(orders))
	for _, o := range orders {
		items = append(items, o.Item)
	}
	response.OK(w, map[string]interface{}{
		"id":     user.ID,
		"name":   user.Name,
		"orders": items,
	})
}

type transactionInput struct {
	Name  string   `json:"name"  validate:"required,min=2,max=255"`
	Email string   `json:"email" validate:"required,email"`
	Items []string `json:"items" validate:"required"`
}

// CreateWithOrders inserts a user plus one order per item as one unit of
// work; a failure anywhere rolls the whole thing back.
func (c *UserController) CreateWithOrders(w http.ResponseWriter, r *http.Request) {
	var input transactionInput
	errs, err := bind.JSON(r, &input)
	if err != nil {
		httperr.Write(w, httperr.Validation("Invalid data provided"))
		return
	}
	if len(errs) > 0 {
		httperr.Write(w, httperr.Validation("Invalid data provided").WithExtra(map[string]any{"fields": errs}))
		return
	}

	user, err := c.users.CreateWithOrders(input.Name, input.Email, input.Items)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("user with orders created",
		"user_id", user.ID, "orders", len(input.Items))
	response.OK(w, map[string]interface{}{
		"user":   userProjection(*user),
		"orders": input.Items,
	})
}

type attachProductsInput struct {
	Products []string `json:"products" validate:"required"`
}

// AttachProducts creates a new order for the user and links each named
// product, creating missing products on the fly.
func (c *UserController) AttachProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	var input attachProductsInput
	errs, err := bind.JSON(r, &input)
	if err != nil {
		httperr.Write(w, httperr.Validation("Invalid data provided"))
		return
	}
	if len(errs) > 0 {
		httperr.Write(w, httperr.Validation("Invalid data provided").WithExtra(map[string]any{"fields": errs}))
		return
	}

	order, err := c.orders.AttachProducts(id, input.Products)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("products attached",
		"order_id", order.ID, "user_id", id, "products", len(input.Products))
	response.OK(w, map[string]interface{}{
		"message":  "Order Done",
		"products": input.Products,
	})
}

// OrdersWithProducts returns the user's orders with the linked product
// names nested under each order.
func (c *UserController) OrdersWithProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	user, orders, err := c.orders.ForUserWithProducts(id)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		names := make([]string, 0, len(o.Products))
		for _, p := range o.Products {
			names = append(names, p.Name)
		}
		out = append(out, map[string]interface{}{
			"order_id":    o.ID,
			"created_for": o.Item,
			"products":    names,
		})
	}

	response.OK(w, map[string]interface{}{
		"user":         user.Name,
		"total_orders": len(out),
		"orders":       out,
	})
}
