package controllers

import (
	"net/http"

	"dukaan/app/repositories"
	"dukaan/app/services"
	"dukaan/pkg/bind"
	"dukaan/pkg/httperr"
	"dukaan/pkg/logger"
	"dukaan/pkg/metrics"
	"dukaan/pkg/middleware"
	"dukaan/pkg/response"
)

type AuthController struct {
	service *services.AuthService
	users   *repositories.UserRepository
	orders  *repositories.OrderRepository
}

func NewAuthController(service *services.AuthService, users *repositories.UserRepository, orders *repositories.OrderRepository) *AuthController {
	return &AuthController{service: service, users: users, orders: orders}
}

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a new account with a hashed password.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	errs, err := bind.JSON(r, &input)
	if err != nil {
		httperr.Write(w, httperr.Validation("Invalid data provided"))
		return
	}
	if len(errs) > 0 {
		httperr.Write(w, httperr.Validation("Invalid data provided").WithExtra(map[string]any{"fields": errs}))
		return
	}

	user, err := c.service.Register(input.Name, input.Email, input.Password)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("user registered", "user_id", user.ID)
	response.Created(w, map[string]interface{}{
		"message": "User created successfully",
		"user_id": user.ID,
	})
}

// Login verifies form credentials (OAuth2 password-form shape: username +
// password fields) and returns a bearer token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperr.Write(w, httperr.Validation("Invalid data provided"))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		httperr.Write(w, httperr.Auth())
		return
	}

	token, err := c.service.Login(email, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		httperr.Write(w, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	response.OK(w, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated user's profile.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		httperr.Write(w, httperr.Auth())
		return
	}

	response.OK(w, map[string]interface{}{
		"message": "Login successful",
		"user_id": principal.UserID,
		"name":    principal.Name,
		"email":   principal.Email,
	})
}

// Dashboard is the admin-only overview. The route guard has already
// checked the "admin" scope; the handler just aggregates the counts.
func (c *AuthController) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		httperr.Write(w, httperr.Auth())
		return
	}

	totalUsers, err := c.users.Count()
	if err != nil {
		httperr.Write(w, err)
		return
	}
	totalOrders, err := c.orders.Count()
	if err != nil {
		httperr.Write(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"message":      "Welcome to Admin Dashboard!",
		"admin_user":   principal.Name,
		"total_users":  totalUsers,
		"total_orders": totalOrders,
		"your_scopes":  principal.Scopes,
	})
}
