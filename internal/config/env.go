package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables holding secrets.
const (
	EnvMailgunKey = "FINTRACK_MAILGUN_API_KEY"
	EnvAMQPURL    = "FINTRACK_AMQP_URL"
)

// EnvPath is the optional dotenv file next to config.toml.
func EnvPath() string {
	return filepath.Join(Dir(), ".env")
}

// LoadEnv seeds the process environment from EnvPath. Variables already
// set in the environment win. A missing file is not an error.
func LoadEnv() error {
	err := godotenv.Load(EnvPath())
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MailgunKey returns the Mailgun API key from the environment.
func MailgunKey() string {
	return os.Getenv(EnvMailgunKey)
}

// AMQPURL returns the broker URL from the environment.
func AMQPURL() string {
	return os.Getenv(EnvAMQPURL)
}
