package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment         string
	Domains             []string
	CertCacheDir        string
	HTTPPort            string
	HTTPSPort           string
	LogDir              string
	OpenAIAPIURL        string
	OpenAIAPIKey        string
	OpenAIModel         string
	GeminiAPIURL        string
	GeminiAPIKey        string
	UseGeminiAlways     bool
	Temperature         float64
	ChunkMaxChars       int
	ExtractWorkers      int
	SalientSentences    int
	ClarifyingQuestions int
	ReportRetention     time.Duration
	CleanupInterval     time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Domains:             []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:        getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:            getEnv("HTTP_PORT", "8087"),
		HTTPSPort:           getEnv("HTTPS_PORT", "443"),
		LogDir:              getEnv("LOG_DIR", "logs"),
		OpenAIAPIURL:        getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4"),
		GeminiAPIURL:        getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		UseGeminiAlways:     getEnvAsBool("USE_GEMINI_ALWAYS", false),
		Temperature:         getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		ChunkMaxChars:       getEnvAsInt("CHUNK_MAX_CHARS", 3000),
		ExtractWorkers:      getEnvAsInt("EXTRACT_WORKERS", 4),
		SalientSentences:    getEnvAsInt("SALIENT_SENTENCES", 3),
		ClarifyingQuestions: getEnvAsInt("CLARIFYING_QUESTIONS", 2),
		ReportRetention:     time.Duration(getEnvAsInt("REPORT_RETENTION_HOURS", 24)) * time.Hour,
		CleanupInterval:     time.Duration(getEnvAsInt("CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
