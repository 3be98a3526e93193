package jsondb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

func (o *JsonDB) GetCategories() ([]model.Category, error) {
	var categories []model.Category

	records, err := o.conn.ReadAll(model.CategoryCollectionName)
	if err != nil {
		return categories, err
	}

	for _, f := range records {
		category := model.Category{}
		if err := json.Unmarshal([]byte(f), &category); err != nil {
			return categories, fmt.Errorf("cannot decode category json structure: %v", err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}

func (o *JsonDB) GetCategoryByID(id string) (model.Category, error) {
	category := model.Category{}
	if err := o.conn.Read(model.CategoryCollectionName, id, &category); err != nil {
		return category, store.ErrCategoryNotFound
	}
	return category, nil
}

func (o *JsonDB) getCategoryByName(name string) (model.Category, error) {
	categories, err := o.GetCategories()
	if err != nil {
		return model.Category{}, err
	}
	for _, category := range categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return model.Category{}, store.ErrCategoryNotFound
}

// CreateCategory inserts a new category, enforcing name uniqueness
// under the store lock.
func (o *JsonDB) CreateCategory(category model.Category) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.getCategoryByName(category.Name); err == nil {
		return store.ErrCategoryExists
	}
	return o.conn.Write(model.CategoryCollectionName, category.ID, category)
}

// SaveCategory overwrites an existing category, refusing a name already
// used by a different one.
func (o *JsonDB) SaveCategory(category model.Category) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	owner, err := o.getCategoryByName(category.Name)
	if err == nil && owner.ID != category.ID {
		return store.ErrCategoryExists
	}
	return o.conn.Write(model.CategoryCollectionName, category.ID, category)
}

func (o *JsonDB) DeleteCategory(id string) error {
	if _, err := o.GetCategoryByID(id); err != nil {
		return err
	}
	return o.conn.Delete(model.CategoryCollectionName, id)
}
