package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	AdminToken  string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A local .env file is loaded first when present; real environment
// variables win over .env entries.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("MBATRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
	}
}
