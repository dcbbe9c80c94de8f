package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1/"

type Config struct {
	HTTPPort      string
	DatabaseURL   string
	UploadDir     string
	MaxUploadMB   int
	LogLevel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	RealtimeVoice string
	GeminiAPIKey  string
	JWTSecret     string
	CORSOrigins   []string

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

var AppConfig Config

// LoadConfig reads the .env file (if any) and the process environment into AppConfig.
func LoadConfig() {
	loaded := godotenv.Load() == nil

	AppConfig = Config{
		HTTPPort:      getEnv("HTTP_PORT", "3001"),
		DatabaseURL:   getEnv("DATABASE_URL", "data.sqlite"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 25),
		LogLevel:      strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", DefaultOpenAIBaseURL),
		RealtimeVoice: getEnv("REALTIME_VOICE", "verse"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		EnvFileLoaded: loaded,
	}

	if AppConfig.MaxUploadMB <= 0 {
		AppConfig.MaxUploadMB = 25
	}
	if !strings.HasSuffix(AppConfig.OpenAIBaseURL, "/") {
		AppConfig.OpenAIBaseURL += "/"
	}
}

// MaxUploadBytes is the multipart size limit derived from MaxUploadMB.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
