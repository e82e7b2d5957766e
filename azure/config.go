package azure

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds Azure storage adapter configuration.
type Config struct {
	SubscriptionID string // enables account key lookup through ARM
	ResourceGroup  string
	EndpointURL    string // Custom ARM endpoint URL for simulator mode
	MaxRetries     int32  // azblob pipeline retries; negative disables retries
}

// ConfigFromEnv loads configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		SubscriptionID: os.Getenv("DBEXPORT_AZURE_SUBSCRIPTION_ID"),
		ResourceGroup:  os.Getenv("DBEXPORT_AZURE_RESOURCE_GROUP"),
		EndpointURL:    os.Getenv("DBEXPORT_AZURE_ENDPOINT_URL"),
		MaxRetries:     int32(envOrDefaultInt("DBEXPORT_STORAGE_MAX_RETRIES", 3)),
	}
}

// Validate checks required configuration.
func (c Config) Validate() error {
	if c.SubscriptionID != "" && c.ResourceGroup == "" {
		return fmt.Errorf("DBEXPORT_AZURE_RESOURCE_GROUP is required when DBEXPORT_AZURE_SUBSCRIPTION_ID is set")
	}
	return nil
}

// KeyLookupEnabled reports whether account keys can be fetched from ARM.
func (c Config) KeyLookupEnabled() bool {
	return c.SubscriptionID != "" && c.ResourceGroup != ""
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
