package mysqldb

import (
	"database/sql"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

func (o *MySQLDB) GetCategories() ([]model.Category, error) {
	var categories []model.Category

	rows, err := o.conn.Query("SELECT id, name, created_at, updated_at FROM categories")
	if err != nil {
		return categories, err
	}
	defer rows.Close()

	for rows.Next() {
		category := model.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return categories, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (o *MySQLDB) GetCategoryByID(id string) (model.Category, error) {
	category := model.Category{}
	err := o.conn.QueryRow(
		"SELECT id, name, created_at, updated_at FROM categories WHERE id = ?", id,
	).Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err == sql.ErrNoRows {
		return category, store.ErrCategoryNotFound
	}
	return category, err
}

func (o *MySQLDB) CreateCategory(category model.Category) error {
	_, err := o.conn.Exec(
		"INSERT INTO categories (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		category.ID, category.Name, category.CreatedAt, category.UpdatedAt)
	if isDuplicateEntry(err) {
		return store.ErrCategoryExists
	}
	return err
}

func (o *MySQLDB) SaveCategory(category model.Category) error {
	_, err := o.conn.Exec(
		"UPDATE categories SET name = ?, updated_at = ? WHERE id = ?",
		category.Name, category.UpdatedAt, category.ID)
	if isDuplicateEntry(err) {
		return store.ErrCategoryExists
	}
	return err
}

func (o *MySQLDB) DeleteCategory(id string) error {
	res, err := o.conn.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrCategoryNotFound
	}
	return nil
}
