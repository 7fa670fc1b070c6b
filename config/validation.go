package config

import (
	"fmt"
	"strconv"
)

// ValidateConfig checks that the loaded configuration is usable
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
		return fmt.Errorf("database host, name and user are required")
	}
	if err := validatePort(cfg.DBPort, "DB_PORT"); err != nil {
		return err
	}
	if err := validatePort(cfg.ServerPort, "SERVER_PORT"); err != nil {
		return err
	}
	if cfg.RedisHost != "" {
		if err := validatePort(cfg.RedisPort, "REDIS_PORT"); err != nil {
			return err
		}
	}

	if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required when S3_BUCKET_NAME is set")
	}

	return nil
}

func validatePort(port, name string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s must be a number: %w", name, err)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, n)
	}
	return nil
}
