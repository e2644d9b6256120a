package util

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads the .env file for the given environment, e.g. ".env.development".
// A plain ".env" is used as fallback.
func LoadEnv(env string) error {
	candidates := []string{fmt.Sprintf(".env.%s", env), ".env"}
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			return godotenv.Load(f)
		}
	}
	return fmt.Errorf("no env file found for %q", env)
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}

func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(os.Getenv(key))
}
