package jsondb

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

func (o *JsonDB) GetProducts() ([]model.Product, error) {
	var products []model.Product

	records, err := o.conn.ReadAll(model.ProductCollectionName)
	if err != nil {
		return products, err
	}

	for _, f := range records {
		product := model.Product{}
		if err := json.Unmarshal([]byte(f), &product); err != nil {
			return products, fmt.Errorf("cannot decode product json structure: %v", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (o *JsonDB) GetProductByID(id string) (model.Product, error) {
	product := model.Product{}
	if err := o.conn.Read(model.ProductCollectionName, id, &product); err != nil {
		return product, store.ErrProductNotFound
	}
	return product, nil
}

func (o *JsonDB) SaveProduct(product model.Product) error {
	return o.conn.Write(model.ProductCollectionName, product.ID, product)
}

func (o *JsonDB) DeleteProduct(id string) error {
	if _, err := o.GetProductByID(id); err != nil {
		return err
	}
	return o.conn.Delete(model.ProductCollectionName, id)
}
