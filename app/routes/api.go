package routes

import (
	"time"

	"dukaan/app/controllers"
	"dukaan/pkg/auth"
	"dukaan/pkg/middleware"
	"dukaan/pkg/router"
)

// Deps carries everything the route table needs. Built once in
// internal/server and passed in explicitly, no globals.
type Deps struct {
	Auth     *controllers.AuthController
	Users    *controllers.UserController
	Orders   *controllers.OrderController
	Products *controllers.ProductController

	Tokens   *auth.TokenManager
	FindUser middleware.UserFinder

	// LoginRateStore backs the per-address login limiter.
	LoginRateStore middleware.RateStore
	LoginRateMax   int
}

// RegisterAPI mounts every route. Protected routes run behind the token
// guard; the admin dashboard additionally requires the "admin" scope.
func RegisterAPI(r *router.Router, d Deps) {
	guard := middleware.Guard(d.Tokens, d.FindUser)
	loginLimit := middleware.RateLimitWith(d.LoginRateStore, d.LoginRateMax, time.Minute)

	// Auth
	r.Post("/register", "auth.register", d.Auth.Register)
	r.Post("/login", "auth.login", d.Auth.Login, loginLimit)
	r.Get("/me", "auth.me", d.Auth.Me, guard)
	r.Get("/admin/dashboard", "admin.dashboard", d.Auth.Dashboard,
		guard, middleware.RequireScope(auth.ScopeAdmin))

	// Users
	r.Get("/users", "users.index", d.Users.Index)
	r.Post("/users/transaction", "users.transaction", d.Users.CreateWithOrders)
	r.Get("/users/{id}", "users.show", d.Users.Show)
	r.Get("/users/{id}/orders", "users.orders", d.Users.Orders)
	r.Post("/users/{id}/orders", "users.attach_products", d.Users.AttachProducts)
	r.Get("/users/{id}/details", "users.details", d.Users.Details)
	r.Get("/users/{id}/orders-with-products", "users.orders_with_products", d.Users.OrdersWithProducts)

	// Orders
	r.Post("/orders", "orders.create", d.Orders.Create)
	r.Get("/orders", "orders.index", d.Orders.Index)
	r.Get("/orders/{id}", "orders.show", d.Orders.Show)

	// Products
	r.Get("/products/{name}", "products.show", d.Products.Show)
}
