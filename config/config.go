package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP port the API server listens on
	Port string `env:"PORT" envDefault:"4000"`

	// Path to the sqlite database file
	DBPath string `env:"DB_PATH" envDefault:"database/hanapbahay.db"`

	// Secret used to sign bearer tokens
	JWTSecret string `env:"JWT_SECRET,required"`

	// Object storage configuration
	Storage struct {
		// AWS region the buckets live in
		Region string `env:"AWS_REGION" envDefault:"ap-southeast-1"`

		// Bucket holding landlord verification images
		UserImagesBucket string `env:"USER_IMAGES_BUCKET" envDefault:"user-images"`

		// Bucket holding listing images
		HotelImagesBucket string `env:"HOTEL_IMAGES_BUCKET" envDefault:"hotels-images"`
	}

	// Geocoding configuration
	Geocoding struct {
		// Nominatim search endpoint
		Endpoint string `env:"GEOCODER_ENDPOINT" envDefault:"https://nominatim.openstreetmap.org/search"`

		// User agent sent with every lookup, per the Nominatim usage policy
		UserAgent string `env:"GEOCODER_USER_AGENT" envDefault:"Hanapbahay/1.0"`
	}

	// Maintenance configuration for the orphaned-object drain and the
	// coordinate backfill
	Maintenance struct {
		// Maximum number of orphaned objects per cleanup batch
		MaxBatchSize int `env:"MAINTENANCE_MAX_BATCH_SIZE" envDefault:"50"`

		// Number of concurrent cleanup workers
		WorkerCount int `env:"MAINTENANCE_WORKER_COUNT" envDefault:"2"`

		// Maximum number of retries for a failed cleanup batch
		MaxRetries int `env:"MAINTENANCE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"MAINTENANCE_RETRY_DELAY" envDefault:"5"`

		// Minutes between scheduled maintenance passes
		Interval int `env:"MAINTENANCE_INTERVAL" envDefault:"30"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
