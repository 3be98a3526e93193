// Package mysqldb provides a MySQL storage backend for the storefront API
package mysqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(32) NOT NULL,
	username VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY users_email (email)
);

CREATE TABLE IF NOT EXISTS categories (
	id VARCHAR(32) NOT NULL,
	name VARCHAR(32) NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY categories_name (name)
);

CREATE TABLE IF NOT EXISTS products (
	id VARCHAR(32) NOT NULL,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	brand VARCHAR(255) NOT NULL,
	price DOUBLE NOT NULL,
	category_id VARCHAR(32) NOT NULL,
	quantity INT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (id)
);
`

// MySQLDB - Representation of MySQL database backend
type MySQLDB struct {
	conn *sql.DB
}

// New returns pointer to MySQL database
func New(uname string, pwd string, host string, port int, database string, tls string) (*MySQLDB, error) {
	// Set connection config
	config := mysql.NewConfig()
	config.User = uname
	config.Passwd = pwd
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", host, port)
	config.DBName = database
	config.MultiStatements = true
	config.ParseTime = true
	config.TLSConfig = tls

	// Open connection pool
	conn, err := sql.Open("mysql", config.FormatDSN())
	if err != nil {
		return nil, err
	}
	conn.SetConnMaxLifetime(time.Minute * 3)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)

	// Test the connection
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &MySQLDB{conn: conn}, nil
}

// Init creates the schema. The UNIQUE keys on users.email and
// categories.name make the duplicate checks a property of the insert
// itself rather than a separate read.
func (o *MySQLDB) Init() error {
	_, err := o.conn.Exec(schema)
	return err
}

// isDuplicateEntry reports whether err is a MySQL duplicate-key error
// (ER_DUP_ENTRY).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (o *MySQLDB) GetUsers() ([]model.User, error) {
	var users []model.User

	rows, err := o.conn.Query(
		"SELECT id, username, email, password_hash, admin, created_at, updated_at FROM users")
	if err != nil {
		return users, err
	}
	defer rows.Close()

	for rows.Next() {
		user := model.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Admin, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return users, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (o *MySQLDB) GetUserByID(id string) (model.User, error) {
	user := model.User{}
	err := o.conn.QueryRow(
		"SELECT id, username, email, password_hash, admin, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Admin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return user, store.ErrUserNotFound
	}
	return user, err
}

func (o *MySQLDB) GetUserByEmail(email string) (model.User, error) {
	user := model.User{}
	err := o.conn.QueryRow(
		"SELECT id, username, email, password_hash, admin, created_at, updated_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Admin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return user, store.ErrUserNotFound
	}
	return user, err
}

// CreateUser inserts a new user. The unique index turns a duplicate
// email into a single conditional write, no prior lookup involved.
func (o *MySQLDB) CreateUser(user model.User) error {
	_, err := o.conn.Exec(
		"INSERT INTO users (id, username, email, password_hash, admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.Admin, user.CreatedAt, user.UpdatedAt)
	if isDuplicateEntry(err) {
		return store.ErrEmailExists
	}
	return err
}

func (o *MySQLDB) SaveUser(user model.User) error {
	_, err := o.conn.Exec(
		"UPDATE users SET username = ?, email = ?, password_hash = ?, admin = ?, updated_at = ? WHERE id = ?",
		user.Username, user.Email, user.PasswordHash, user.Admin, user.UpdatedAt, user.ID)
	if isDuplicateEntry(err) {
		return store.ErrEmailExists
	}
	return err
}

func (o *MySQLDB) DeleteUser(id string) error {
	res, err := o.conn.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
