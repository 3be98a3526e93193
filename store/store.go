package store

import (
	"errors"

	"github.com/yourusername/storefront/model"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already registered")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrProductNotFound  = errors.New("product not found")
)

// IStore is the persistence contract shared by the jsondb and mysqldb
// backends. CreateUser and SaveUser enforce email uniqueness atomically
// inside the store so callers never need a separate existence check.
type IStore interface {
	Init() error

	GetUsers() ([]model.User, error)
	GetUserByID(id string) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
	CreateUser(user model.User) error
	SaveUser(user model.User) error
	DeleteUser(id string) error

	GetCategories() ([]model.Category, error)
	GetCategoryByID(id string) (model.Category, error)
	CreateCategory(category model.Category) error
	SaveCategory(category model.Category) error
	DeleteCategory(id string) error

	GetProducts() ([]model.Product, error)
	GetProductByID(id string) (model.Product, error)
	SaveProduct(product model.Product) error
	DeleteProduct(id string) error
}
