package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	BackendBaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	FirebaseCredentials string
	GoogleCredentials   string
	GoogleProjectID     string
	GooglePubSubTopic   string
	PubSubSubscription  string

	Platform          string // "ios" or "android"
	DeviceToken       string // token issued to this installation by the messaging provider
	AutoAcceptPrompt  bool   // answer for the explanatory permission dialog when running headless
	PermissionGranted bool   // OS-level permission reported by the headless platform
	InitialMessage    string // JSON push message that launched the app, if any
	SchedulerInterval time.Duration
	DeregisterTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	schedulerInterval := 30 * time.Second
	if v := os.Getenv("SCHEDULER_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			schedulerInterval = parsed
		}
	}

	deregisterTimeout := 10 * time.Second
	if v := os.Getenv("DEREGISTER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			deregisterTimeout = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8090"),
		BackendBaseURL:      getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "schoolapp_device"),
		DBSSLMode:           getEnv("DB_SSL_MODE", "disable"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleCredentials:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:   getEnv("GOOGLE_PUBSUB_TOPIC", "school-notifications"),
		PubSubSubscription:  getEnv("PUBSUB_SUBSCRIPTION", ""),
		Platform:            getEnv("DEVICE_PLATFORM", "android"),
		DeviceToken:         getEnv("DEVICE_TOKEN", ""),
		AutoAcceptPrompt:    getEnvAsBool("PERMISSION_AUTO_ACCEPT", true),
		PermissionGranted:   getEnvAsBool("PERMISSION_GRANTED", true),
		InitialMessage:      getEnv("INITIAL_MESSAGE", ""),
		SchedulerInterval:   schedulerInterval,
		DeregisterTimeout:   deregisterTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
