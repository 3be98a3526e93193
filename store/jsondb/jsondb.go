package jsondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/sdomino/scribble"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

// JsonDB is a scribble-backed document store. The mutex guards the
// invariants that span more than one document: email uniqueness for
// users and name uniqueness for categories. Individual document writes
// are already serialized by scribble itself.
type JsonDB struct {
	conn   *scribble.Driver
	dbPath string
	mu     sync.Mutex
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

// Init creates the collection directories so that ReadAll on a fresh
// store returns an empty list instead of a missing-collection error.
func (o *JsonDB) Init() error {
	for _, collection := range []string{
		model.UserCollectionName,
		model.CategoryCollectionName,
		model.ProductCollectionName,
	} {
		dir := path.Join(o.dbPath, collection)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *JsonDB) GetUsers() ([]model.User, error) {
	var users []model.User

	records, err := o.conn.ReadAll(model.UserCollectionName)
	if err != nil {
		return users, err
	}

	for _, f := range records {
		user := model.User{}
		if err := json.Unmarshal([]byte(f), &user); err != nil {
			return users, fmt.Errorf("cannot decode user json structure: %v", err)
		}
		users = append(users, user)
	}

	return users, nil
}

func (o *JsonDB) GetUserByID(id string) (model.User, error) {
	user := model.User{}
	if err := o.conn.Read(model.UserCollectionName, id, &user); err != nil {
		return user, store.ErrUserNotFound
	}
	return user, nil
}

func (o *JsonDB) GetUserByEmail(email string) (model.User, error) {
	users, err := o.GetUsers()
	if err != nil {
		return model.User{}, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, store.ErrUserNotFound
}

// CreateUser inserts a new user. The duplicate-email check and the
// write happen under one lock, closing the read-then-write race.
func (o *JsonDB) CreateUser(user model.User) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.GetUserByEmail(user.Email); err == nil {
		return store.ErrEmailExists
	}
	return o.conn.Write(model.UserCollectionName, user.ID, user)
}

// SaveUser overwrites an existing user, refusing an email already owned
// by a different account.
func (o *JsonDB) SaveUser(user model.User) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	owner, err := o.GetUserByEmail(user.Email)
	if err == nil && owner.ID != user.ID {
		return store.ErrEmailExists
	}
	return o.conn.Write(model.UserCollectionName, user.ID, user)
}

func (o *JsonDB) DeleteUser(id string) error {
	if _, err := o.GetUserByID(id); err != nil {
		return err
	}
	return o.conn.Delete(model.UserCollectionName, id)
}
