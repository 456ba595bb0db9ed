package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireJWTSecret     bool
	RequireDBPassword    bool
	RequireRedisPassword bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			RequireJWTSecret: true,
		},
		Production: {
			RequireJWTSecret:     true,
			RequireDBPassword:    true,
			RequireRedisPassword: true,
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Env]

	var errs []error

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "DB_HOST and DB_NAME are required for postgres"})
		}
		if reqs.RequireDBPassword && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "db_password secret is required"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.RecipeStore {
	case "sql":
	case "mongo":
		if cfg.MongoURI == "" {
			errs = append(errs, ValidationError{"MONGO_URI", "is required when RECIPE_STORE=mongo"})
		}
	default:
		errs = append(errs, ValidationError{"RECIPE_STORE", fmt.Sprintf("unsupported recipe store %q", cfg.RecipeStore)})
	}

	switch cfg.Storage.Backend {
	case ImageStoreS3:
		if cfg.Storage.BucketName == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required"})
		}
	case ImageStoreMinio:
		if cfg.Storage.MinioEndpoint == "" || cfg.Storage.MinioAccessKey == "" {
			errs = append(errs, ValidationError{"MINIO_ENDPOINT", "MINIO_ENDPOINT and MINIO_ACCESS_KEY are required for minio"})
		}
	default:
		errs = append(errs, ValidationError{"IMAGE_STORE", fmt.Sprintf("unsupported image store %q", cfg.Storage.Backend)})
	}

	if cfg.Storage.MaxImageBytes <= 0 {
		errs = append(errs, ValidationError{"MAX_IMAGE_BYTES", "must be positive"})
	}

	if cfg.JWTSecret == "" {
		if reqs.RequireJWTSecret {
			errs = append(errs, ValidationError{"JWT_SECRET", "jwt_secret secret is required"})
		} else {
			cfg.JWTSecret = "devdish-development-secret"
		}
	}
	if reqs.RequireRedisPassword && cfg.RedisURL == "" && cfg.RedisPassword == "" {
		errs = append(errs, ValidationError{"REDIS_PASSWORD", "redis_password secret is required"})
	}

	return errors.Join(errs...)
}
