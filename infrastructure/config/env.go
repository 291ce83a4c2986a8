package config

import (
	"os"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the OpenRouter API key
const APIKeyEnv = "OPENROUTER_API_KEY"

// LoadDotEnv loads variables from a .env file in the working directory.
// A missing file is not an error; already-set variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// APIKey returns the OpenRouter API key from the environment, or ""
func APIKey() string {
	return os.Getenv(APIKeyEnv)
}
