package config // package config loads application configuration from environment variables

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The reservation store is
// external: the service only needs its base URL and the CSRF token it
// expects, never database credentials for it.  The journal database
// is this service's own and is optional.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	StoreBaseURL     string // base URL of the reservation store's API
	StoreCSRFToken   string // CSRF token attached to every store request
	StoreTimeoutSec  int    // per-request timeout toward the store, in seconds
	JWTSecret        string // secret used to sign operator JWTs
	AccessTTLMin     int    // operator access token time-to-live in minutes
	OperatorName     string // login name of the map operator account
	OperatorPassHash string // bcrypt hash of the operator password
	UndoCapacity     int    // bound of the move-mode undo ledger
	SessionTTLMin    int    // conflict session time-to-live in minutes
	JournalEnabled   bool   // whether the MySQL operation journal is wired
	DBUser           string // journal database username
	DBPass           string // journal database password (optional)
	DBHost           string // journal database host address
	DBPort           string // journal database port number
	DBName           string // journal database name
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Journal database variables are only required when the journal is
// enabled.
func Load() Config {
	cfg := Config{
		Env:              must("APP_ENV"),                        // environment (dev/test/prod)
		Port:             must("APP_PORT"),                       // port to bind the HTTP server
		StoreBaseURL:     must("STORE_BASE_URL"),                 // reservation store API root
		StoreCSRFToken:   os.Getenv("STORE_CSRF_TOKEN"),          // CSRF token (empty allowed in dev)
		StoreTimeoutSec:  envInt("STORE_TIMEOUT_SEC", 10),        // store request timeout
		JWTSecret:        must("JWT_SECRET"),                     // secret for signing operator JWTs
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),        // TTL for operator tokens in minutes
		OperatorName:     must("OPERATOR_NAME"),                  // operator login name
		OperatorPassHash: must("OPERATOR_PASSWORD_HASH"),         // bcrypt hash of operator password
		UndoCapacity:     envInt("UNDO_CAPACITY", 20),            // undo ledger bound
		SessionTTLMin:    envInt("CONFLICT_SESSION_TTL_MIN", 30), // abandoned conflict session expiry
		JournalEnabled:   envBool("JOURNAL_ENABLED", false),      // MySQL operation journal toggle
	}
	if cfg.JournalEnabled {
		cfg.DBUser = must("DB_USER") // journal database user
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
