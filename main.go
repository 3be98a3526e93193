package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/yourusername/storefront/auth"
	"github.com/yourusername/storefront/handler"
	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/router"
	"github.com/yourusername/storefront/store"
	"github.com/yourusername/storefront/store/jsondb"
	"github.com/yourusername/storefront/store/mysqldb"
	"github.com/yourusername/storefront/util"
)

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	buildTime  = fmt.Sprintf(time.Now().UTC().Format("01-02-2006 15:04:05"))

	// configuration variables
	flagBindAddress   string = "0.0.0.0:5000"
	flagStoreBackend  string = "jsondb"
	flagDBPath        string = "./db"
	flagJwtSecret     string
	flagTokenDuration time.Duration = 720 * time.Hour
	flagSecureCookie  bool
	flagAdminEmail    string = "admin@example.com"
	flagAdminPassword string = "admin"
	flagLogLevel      string = "INFO"
	flagMySQLUser     string = "storefront"
	flagMySQLPassword string
	flagMySQLHost     string = "127.0.0.1"
	flagMySQLPort     int    = 3306
	flagMySQLDatabase string = "storefront"
	flagMySQLTLS      string = "false"
)

func init() {
	// a local .env is optional; flags and real env variables win
	_ = godotenv.Load()

	// command-line flags and env variables
	flag.StringVar(&flagBindAddress, "bind-address", util.LookupEnvOrString("BIND_ADDRESS", flagBindAddress), "Address:Port to which the app will be bound.")
	flag.StringVar(&flagStoreBackend, "store", util.LookupEnvOrString("STORE_BACKEND", flagStoreBackend), "Storage backend: jsondb or mysqldb.")
	flag.StringVar(&flagDBPath, "db-path", util.LookupEnvOrString("DB_PATH", flagDBPath), "Directory of the jsondb document store.")
	flag.StringVar(&flagJwtSecret, "jwt-secret", util.LookupEnvOrString("JWT_SECRET", flagJwtSecret), "The key used to sign session tokens.")
	flag.DurationVar(&flagTokenDuration, "token-duration", util.LookupEnvOrDuration("TOKEN_DURATION", flagTokenDuration), "Validity window of issued session tokens.")
	flag.BoolVar(&flagSecureCookie, "secure-cookie", util.LookupEnvOrBool("SECURE_COOKIE", flagSecureCookie), "Set the Secure attribute on the session cookie.")
	flag.StringVar(&flagAdminEmail, "admin-email", util.LookupEnvOrString("ADMIN_EMAIL", flagAdminEmail), "Email of the bootstrap admin account.")
	flag.StringVar(&flagAdminPassword, "admin-password", util.LookupEnvOrString("ADMIN_PASSWORD", flagAdminPassword), "Password of the bootstrap admin account.")
	flag.StringVar(&flagLogLevel, "log-level", util.LookupEnvOrString("LOG_LEVEL", flagLogLevel), "Log level: DEBUG, INFO, WARN, ERROR or OFF.")
	flag.StringVar(&flagMySQLUser, "mysql-user", util.LookupEnvOrString("MYSQL_USER", flagMySQLUser), "MySQL user (mysqldb backend).")
	flag.StringVar(&flagMySQLPassword, "mysql-password", util.LookupEnvOrString("MYSQL_PASSWORD", flagMySQLPassword), "MySQL password (mysqldb backend).")
	flag.StringVar(&flagMySQLHost, "mysql-host", util.LookupEnvOrString("MYSQL_HOST", flagMySQLHost), "MySQL host (mysqldb backend).")
	flag.IntVar(&flagMySQLPort, "mysql-port", util.LookupEnvOrInt("MYSQL_PORT", flagMySQLPort), "MySQL port (mysqldb backend).")
	flag.StringVar(&flagMySQLDatabase, "mysql-database", util.LookupEnvOrString("MYSQL_DATABASE", flagMySQLDatabase), "MySQL database name (mysqldb backend).")
	flag.StringVar(&flagMySQLTLS, "mysql-tls", util.LookupEnvOrString("MYSQL_TLS", flagMySQLTLS), "MySQL TLS config (mysqldb backend).")
	flag.Parse()

	// print app information
	fmt.Println("Storefront API")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Store backend\t:", flagStoreBackend)
	fmt.Println("Bind address\t:", flagBindAddress)
}

func main() {
	if flagJwtSecret == "" {
		log.Fatal("A signing secret is required, set -jwt-secret or JWT_SECRET")
	}

	db, err := buildStore()
	if err != nil {
		log.Fatal("Cannot create the store: ", err)
	}
	if err := db.Init(); err != nil {
		log.Fatal("Cannot init the store: ", err)
	}
	if err := seedAdminUser(db, flagAdminEmail, flagAdminPassword); err != nil {
		log.Fatal("Cannot seed the admin account: ", err)
	}

	issuer := auth.NewTokenIssuer([]byte(flagJwtSecret), flagTokenDuration)

	lvl, err := util.ParseLogLevel(flagLogLevel)
	if err != nil {
		log.Fatal(err)
	}

	// register routes
	app := router.New(lvl)
	api := app.Group("/api")
	authenticate := handler.Authenticate(db, issuer)

	api.POST("/users", handler.RegisterUser(db, issuer, flagSecureCookie), handler.ContentTypeJson)
	api.POST("/users/auth", handler.Login(db, issuer, flagSecureCookie), handler.ContentTypeJson)
	api.POST("/users/logout", handler.Logout())
	api.GET("/users", handler.GetUsers(db), authenticate, handler.AdminRequired)
	api.GET("/users/profile", handler.GetProfile(), authenticate)
	api.PUT("/users/profile", handler.UpdateProfile(db), authenticate, handler.ContentTypeJson)
	api.GET("/users/:id", handler.GetUser(db), authenticate, handler.AdminRequired)
	api.PUT("/users/:id", handler.UpdateUser(db), authenticate, handler.AdminRequired, handler.ContentTypeJson)
	api.DELETE("/users/:id", handler.DeleteUser(db), authenticate, handler.AdminRequired)

	api.GET("/categories", handler.GetCategories(db))
	api.GET("/categories/:id", handler.GetCategory(db))
	api.POST("/categories", handler.CreateCategory(db), authenticate, handler.AdminRequired, handler.ContentTypeJson)
	api.PUT("/categories/:id", handler.UpdateCategory(db), authenticate, handler.AdminRequired, handler.ContentTypeJson)
	api.DELETE("/categories/:id", handler.DeleteCategory(db), authenticate, handler.AdminRequired)

	api.GET("/products", handler.GetProducts(db))
	api.GET("/products/:id", handler.GetProduct(db))
	api.POST("/products", handler.CreateProduct(db), authenticate, handler.AdminRequired, handler.ContentTypeJson)
	api.PUT("/products/:id", handler.UpdateProduct(db), authenticate, handler.AdminRequired, handler.ContentTypeJson)
	api.DELETE("/products/:id", handler.DeleteProduct(db), authenticate, handler.AdminRequired)

	app.Logger.Fatal(app.Start(flagBindAddress))
}

func buildStore() (store.IStore, error) {
	switch flagStoreBackend {
	case "jsondb":
		return jsondb.New(flagDBPath)
	case "mysqldb":
		return mysqldb.New(flagMySQLUser, flagMySQLPassword, flagMySQLHost, flagMySQLPort, flagMySQLDatabase, flagMySQLTLS)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", flagStoreBackend)
	}
}

// seedAdminUser creates the bootstrap admin account when the store has
// no users at all. The admin flag is only mutable through admin-only
// routes, so without a seed there would be no way to get the first
// admin.
func seedAdminUser(db store.IStore, email, password string) error {
	users, err := db.GetUsers()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return db.CreateUser(model.User{
		ID:           xid.New().String(),
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Admin:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
