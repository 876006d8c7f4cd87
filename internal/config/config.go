package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Index    IndexConfig
	Analysis AnalysisConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI      string
	Serper      string
	IngestTopic string // async chunk-embedding topic
}

type AIConfig struct {
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string // e.g. "gpt-4.1"
	LLMBaseURL          string
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string // e.g. "text-embedding-ada-002"
	OllamaBaseURL       string
	OllamaModel         string
	Temperature         float64
	AppraisalMaxTokens  int
	ExtractionMaxTokens int
	ExtractionTimeoutS  int
}

type IndexConfig struct {
	BaseName       string
	Dimension      int
	MaxNameLength  int
	ProtectedNames []string
	ReferenceIndex string
}

type AnalysisConfig struct {
	ExtractionTopK    int
	ChatTopK          int
	ChunkSentences    int
	ChunkOverlap      int
	ContextWindowSize int
	ContextSnipChars  int
	WebSearchResults  int
	WebQualifier      string
	WebRelaxed        string
	TemplateDir       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			Serper:      getEnv("SERPER_API_KEY", ""),
			IngestTopic: getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_DOCUMENT_CHUNKS"),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4.1"),
			LLMBaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			Temperature:         getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			AppraisalMaxTokens:  getEnvAsInt("APPRAISAL_MAX_TOKENS", 2048),
			ExtractionMaxTokens: getEnvAsInt("EXTRACTION_MAX_TOKENS", 16384),
			ExtractionTimeoutS:  getEnvAsInt("EXTRACTION_TIMEOUT_SECONDS", 180),
		},
		Index: IndexConfig{
			BaseName:       getEnv("INDEX_BASE_NAME", "rfp-analysis"),
			Dimension:      getEnvAsInt("INDEX_DIMENSION", 1536),
			MaxNameLength:  getEnvAsInt("INDEX_MAX_NAME_LENGTH", 45),
			ProtectedNames: getEnvAsSlice("PROTECTED_INDEX_NAMES", []string{"rfp-analysis", "rfpuploads", "paidmediabids"}),
			ReferenceIndex: getEnv("REFERENCE_INDEX_NAME", "paidmediabids"),
		},
		Analysis: AnalysisConfig{
			ExtractionTopK:    getEnvAsInt("EXTRACTION_TOP_K", 40),
			ChatTopK:          getEnvAsInt("CHAT_TOP_K", 5),
			ChunkSentences:    getEnvAsInt("CHUNK_SENTENCES", 20),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 2),
			ContextWindowSize: getEnvAsInt("CONTEXT_WINDOW_SIZE", 2),
			ContextSnipChars:  getEnvAsInt("CONTEXT_SNIP_CHARS", 1000),
			WebSearchResults:  getEnvAsInt("WEB_SEARCH_RESULTS", 3),
			WebQualifier:      getEnv("WEB_SEARCH_QUALIFIER", "Rhetorik Ltd"),
			WebRelaxed:        getEnv("WEB_SEARCH_RELAXED_QUALIFIER", "Rhetorik"),
			TemplateDir:       getEnv("TEMPLATE_DIR", "templates"),
		},
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

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
