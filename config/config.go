package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"port"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"mongo_database"`
	LogMode       string `mapstructure:"log_mode"`

	// Blob storage: "local" writes under upload_dir, "gcs" uses gcs_bucket.
	StorageDriver string `mapstructure:"storage_driver"`
	UploadDir     string `mapstructure:"upload_dir"`
	GCSBucket     string `mapstructure:"gcs_bucket"`

	// OCR backend for image uploads: "tesseract" or "vision".
	OCRProvider string `mapstructure:"ocr_provider"`

	// Completion provider: "openai" or "gemini".
	AIProvider   string `mapstructure:"ai_provider"`
	AIEndpoint   string `mapstructure:"ai_endpoint"`
	Model        string `mapstructure:"model"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("mongo_database", "docchat")
	v.SetDefault("storage_driver", "local")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("ocr_provider", "tesseract")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("model", "gpt-3.5-turbo")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("MONGODB_URI")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
