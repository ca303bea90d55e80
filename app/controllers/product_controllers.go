package controllers

import (
	"net/http"

	"dukaan/app/repositories"
	"dukaan/pkg/httperr"
	"dukaan/pkg/response"
	"dukaan/pkg/router"
)

type ProductController struct {
	products *repositories.ProductRepository
}

func NewProductController(products *repositories.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// Show looks a product up by its unique name.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	name := router.Param(r, "name")

	product, err := c.products.FindByName(name)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"id":      product.ID,
		"name":    product.Name,
		"message": "Product Founded Successfully",
	})
}
