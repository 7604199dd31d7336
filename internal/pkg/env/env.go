package env

import (
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found and exports its values into the
// process environment so that config.Load sees them. Variables already present
// in the environment win. A missing file is not an error; containers pass
// everything through the environment.
func SetupEnvFile() string {
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/adengine to project root
		"../../../.env", // Fallback for deeper nesting
	}

	for _, envFile := range envFiles {
		values, err := godotenv.Read(envFile)
		if err != nil {
			continue
		}
		Env = values
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
		return envFile
	}

	return ""
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
