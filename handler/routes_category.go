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

type categoryPayload struct {
	Name string `json:"name" validate:"required,max=32"`
}

// GetCategories handler lists all categories. Public.
func GetCategories(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		categories, err := db.GetCategories()
		if err != nil {
			log.Error("Cannot fetch categories from database: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot fetch categories"})
		}
		if categories == nil {
			categories = []model.Category{}
		}
		return c.JSON(http.StatusOK, categories)
	}
}

// GetCategory handler returns a single category. Public.
func GetCategory(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		category, err := db.GetCategoryByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Category not found"})
		}
		return c.JSON(http.StatusOK, category)
	}
}

// CreateCategory handler adds a category with a unique name.
func CreateCategory(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload categoryPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Name is required"})
		}

		now := time.Now().UTC()
		category := model.Category{
			ID:        xid.New().String(),
			Name:      payload.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := db.CreateCategory(category); err != nil {
			if err == store.ErrCategoryExists {
				return c.JSON(http.StatusConflict, jsonHTTPResponse{false, "Category already exists"})
			}
			log.Error("Cannot create category: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create category"})
		}

		return c.JSON(http.StatusCreated, category)
	}
}

// UpdateCategory handler renames a category.
func UpdateCategory(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		category, err := db.GetCategoryByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Category not found"})
		}

		var payload categoryPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Name is required"})
		}

		category.Name = payload.Name
		category.UpdatedAt = time.Now().UTC()

		if err := db.SaveCategory(category); err != nil {
			if err == store.ErrCategoryExists {
				return c.JSON(http.StatusConflict, jsonHTTPResponse{false, "Category already exists"})
			}
			log.Error("Cannot update category: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot update category"})
		}

		return c.JSON(http.StatusOK, category)
	}
}

// DeleteCategory handler removes a category.
func DeleteCategory(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := db.DeleteCategory(c.Param("id")); err != nil {
			if err == store.ErrCategoryNotFound {
				return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "Category not found"})
			}
			log.Error("Cannot delete category: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot delete category"})
		}
		return c.JSON(http.StatusOK, jsonHTTPResponse{true, "Category removed"})
	}
}
