package config // package config loads application configuration from environment variables

import (
	"log" // log reports configuration errors and halts execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Secrets and identifiers stay strings;
// anything optional documents its default here.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret the identity provider signs session tokens with
	WebhookSecret string // shared secret for verifying identity webhooks
	OpenAIAPIKey  string // API key for the chat assistant's model
	OpenAIModel   string // model name override (empty selects the default)
	PublicBaseURL string // externally reachable base URL, used in QR codes and receipt links
	PublicDir     string // directory generated ticket PDFs are written to and served from
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty password allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		WebhookSecret: must("CLERK_WEBHOOK_SECRET"),
		OpenAIAPIKey:  must("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		PublicBaseURL: must("PUBLIC_BASE_URL"),
		PublicDir:     getenv("PUBLIC_DIR", "public"),
	}
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
