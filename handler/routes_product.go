package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

type productPayload struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price" validate:"gte=0"`
	CategoryID  string  `json:"categoryId" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// GetProducts handler lists all products. Public.
func GetProducts(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		products, err := db.GetProducts()
		if err != nil {
			log.Error("Cannot fetch products from database: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot fetch products"})
		}
		if products == nil {
			products = []model.Product{}
		}
		return c.JSON(http.StatusOK, products)
	}
}

// GetProduct handler returns a single product. Public.
func GetProduct(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		product, err := db.GetProductByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Product not found"})
		}
		return c.JSON(http.StatusOK, product)
	}
}

// CreateProduct handler adds a product. The referenced category must
// exist.
func CreateProduct(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload productPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Invalid product data"})
		}

		if _, err := db.GetCategoryByID(payload.CategoryID); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Unknown category"})
		}

		now := time.Now().UTC()
		product := model.Product{
			ID:          xid.New().String(),
			Name:        payload.Name,
			Description: payload.Description,
			Brand:       payload.Brand,
			Price:       payload.Price,
			CategoryID:  payload.CategoryID,
			Quantity:    payload.Quantity,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := db.SaveProduct(product); err != nil {
			log.Error("Cannot create product: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create product"})
		}

		return c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct handler overwrites the mutable fields of a product.
func UpdateProduct(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		product, err := db.GetProductByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Product not found"})
		}

		var payload productPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Invalid product data"})
		}

		if _, err := db.GetCategoryByID(payload.CategoryID); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Unknown category"})
		}

		product.Name = payload.Name
		product.Description = payload.Description
		product.Brand = payload.Brand
		product.Price = payload.Price
		product.CategoryID = payload.CategoryID
		product.Quantity = payload.Quantity
		product.UpdatedAt = time.Now().UTC()

		if err := db.SaveProduct(product); err != nil {
			log.Error("Cannot update product: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot update product"})
		}

		return c.JSON(http.StatusOK, product)
	}
}

// DeleteProduct handler removes a product.
func DeleteProduct(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := db.DeleteProduct(c.Param("id")); err != nil {
			if err == store.ErrProductNotFound {
				return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Product not found"})
			}
			log.Error("Cannot delete product: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot delete product"})
		}
		return c.JSON(http.StatusOK, jsonHTTPResponse{true, "Product removed"})
	}
}
