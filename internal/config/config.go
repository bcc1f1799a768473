package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Appointment storage backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string
	Debug    bool

	// Upstream chat-completion endpoint
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	LLMMaxTokens   int
	// LLMTemperature must be positive; zero or negative values load as the
	// 0.7 default because the completion request omits a zero temperature.
	LLMTemperature float32
	LLMTimeout     time.Duration

	AppointmentStore string

	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool
	RedisAppointmentsKey string

	DatabaseURL string

	AppointmentsTable   string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	KafkaBrokers           string
	KafkaAppointmentsTopic string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads an optional dotenv file (ENV_FILE, default .env) and then
// configuration from environment variables. Variables already set in the
// process environment win over the file.
func Load() *Config {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		Port:     getEnv("API_PORT", "5000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Debug:    getEnvAsBool("DEBUG", true),

		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://192.168.35.251:8081/v1"),
		LLMModel:       getEnv("LLM_MODEL", "mistral"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 500),
		LLMTemperature: getEnvAsPositiveFloat32("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),

		AppointmentStore: strings.ToLower(strings.TrimSpace(getEnv("APPOINTMENT_STORE", StoreMemory))),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		RedisAppointmentsKey: getEnv("REDIS_APPOINTMENTS_KEY", "appointments"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AppointmentsTable:   getEnv("APPOINTMENTS_TABLE", "appointments"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		KafkaBrokers:           getEnv("KAFKA_BROKERS", ""),
		KafkaAppointmentsTopic: getEnv("KAFKA_APPOINTMENTS_TOPIC", "appointment.captured"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat64("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	return float32(getEnvAsFloat64(key, float64(defaultValue)))
}

func getEnvAsPositiveFloat32(key string, defaultValue float32) float32 {
	if value := getEnvAsFloat32(key, defaultValue); value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
