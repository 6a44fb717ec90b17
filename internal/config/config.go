package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Everything external the application talks to —
// MySQL, S3, Google sign-in, the OpenAI API — is configured here once at
// startup and injected into components; nothing reads the environment at
// request time.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	TokenTTLDays   int    // access token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing
	GoogleClientID string // OAuth client id Google id-tokens must be issued for
	AWSRegion      string // region of the S3 bucket holding invoice images
	AWSAccessKey   string // S3 access key id
	AWSSecretKey   string // S3 secret access key
	AWSBucket      string // S3 bucket name for invoice images
	OpenAIKey      string // API key for the completion service
	OpenAIModel    string // completion model (defaults to gpt-4o)
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTLDays:   mustInt("TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		GoogleClientID: must("GOOGLE_CLIENT_ID"),
		AWSRegion:      must("AWS_REGION"),
		AWSAccessKey:   must("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   must("AWS_SECRET_ACCESS_KEY"),
		AWSBucket:      must("AWS_BUCKET_NAME"),
		OpenAIKey:      must("OPENAI_API_KEY"),
		OpenAIModel:    model,
	}
}

// must retrieves the value of a required environment variable. If the
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
