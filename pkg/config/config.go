package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server Server
	GitHub GitHub
	Cache  Cache
	Gemini Gemini
}

type Server struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type GitHub struct {
	Token          string
	APIBaseURL     string
	PerPage        int
	RequestTimeout int // seconds, applied per page request
	MaxPages       int // default page limit when the caller sends none
}

type Cache struct {
	TTLSeconds int
}

type Gemini struct {
	APIKey string
	Model  string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: Server{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		GitHub: GitHub{
			Token:          getEnv("GITHUB_TOKEN", ""),
			APIBaseURL:     getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),
			PerPage:        getEnvAsInt("GITHUB_PER_PAGE", 50),
			RequestTimeout: getEnvAsInt("HTTP_REQUEST_TIMEOUT", 15),
			MaxPages:       getEnvAsInt("GITHUB_DEFAULT_MAX_PAGES", 3),
		},
		Cache: Cache{
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 90),
		},
		Gemini: Gemini{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
