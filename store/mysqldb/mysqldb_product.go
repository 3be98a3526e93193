package mysqldb

import (
	"database/sql"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

func (o *MySQLDB) GetProducts() ([]model.Product, error) {
	var products []model.Product

	rows, err := o.conn.Query(
		"SELECT id, name, description, brand, price, category_id, quantity, created_at, updated_at FROM products")
	if err != nil {
		return products, err
	}
	defer rows.Close()

	for rows.Next() {
		product := model.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Brand,
			&product.Price, &product.CategoryID, &product.Quantity,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return products, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (o *MySQLDB) GetProductByID(id string) (model.Product, error) {
	product := model.Product{}
	err := o.conn.QueryRow(
		"SELECT id, name, description, brand, price, category_id, quantity, created_at, updated_at FROM products WHERE id = ?",
		id,
	).Scan(&product.ID, &product.Name, &product.Description, &product.Brand,
		&product.Price, &product.CategoryID, &product.Quantity,
		&product.CreatedAt, &product.UpdatedAt)
	if err == sql.ErrNoRows {
		return product, store.ErrProductNotFound
	}
	return product, err
}

// SaveProduct upserts by primary key so the handler does not need to
// distinguish create from update.
func (o *MySQLDB) SaveProduct(product model.Product) error {
	_, err := o.conn.Exec(
		`INSERT INTO products (id, name, description, brand, price, category_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description), brand = VALUES(brand),
		price = VALUES(price), category_id = VALUES(category_id), quantity = VALUES(quantity), updated_at = VALUES(updated_at)`,
		product.ID, product.Name, product.Description, product.Brand,
		product.Price, product.CategoryID, product.Quantity,
		product.CreatedAt, product.UpdatedAt)
	return err
}

func (o *MySQLDB) DeleteProduct(id string) error {
	res, err := o.conn.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrProductNotFound
	}
	return nil
}
