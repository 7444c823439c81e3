package env

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads the given dotenv files, ".env" when none are named. Variables
// already set in the environment win.
func LoadEnv(logger *zap.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Info("no .env file found, assuming environment variables are set directly")
	}
}

func MustGetEnv(logger *zap.Logger, key string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		logger.Fatal("environment variable not set", zap.String("key", key))
	}
	return val
}
