package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT", "PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.cors_origins", "SERVER_CORS_ORIGINS")
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.cors_origins", []string{"*"})

	// Logging
	viper.BindEnv("log.format", "LOG_FORMAT")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.level", 0)

	// Document ingestion
	viper.BindEnv("ingest.dir", "INGEST_DIR")
	viper.BindEnv("ingest.extensions", "INGEST_EXTENSIONS")
	viper.BindEnv("ingest.chunk_size", "INGEST_CHUNK_SIZE")
	viper.BindEnv("ingest.chunk_overlap", "INGEST_CHUNK_OVERLAP")
	viper.SetDefault("ingest.dir", "./pdf")
	viper.SetDefault("ingest.extensions", []string{".txt"})
	viper.SetDefault("ingest.chunk_size", 100000)
	viper.SetDefault("ingest.chunk_overlap", 0)

	// Embeddings
	viper.BindEnv("embedding.provider", "EMBEDDING_PROVIDER")
	viper.BindEnv("embedding.api_key", "EMBEDDING_API_KEY", "PREM_API_KEY")
	viper.BindEnv("embedding.base_url", "EMBEDDING_BASE_URL")
	viper.BindEnv("embedding.model", "EMBEDDING_MODEL")
	viper.BindEnv("embedding.project_id", "EMBEDDING_PROJECT_ID", "PREM_PROJECT_ID")
	viper.BindEnv("embedding.batch_size", "EMBEDDING_BATCH_SIZE")
	viper.SetDefault("embedding.provider", "prem")
	viper.SetDefault("embedding.batch_size", 512)

	// Chat model
	viper.BindEnv("llm.provider", "LLM_PROVIDER")
	viper.BindEnv("llm.api_key", "LLM_API_KEY", "GROQ_API_KEY")
	viper.BindEnv("llm.base_url", "LLM_BASE_URL")
	viper.BindEnv("llm.model", "LLM_MODEL")
	viper.BindEnv("llm.temperature", "LLM_TEMPERATURE")
	viper.SetDefault("llm.provider", "openai")

	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.SetDefault("ollama.url", "http://localhost:11434")

	// Retrieval and history
	viper.BindEnv("rag.top_k", "RAG_TOP_K")
	viper.BindEnv("history.max_entries", "HISTORY_MAX_ENTRIES")
	viper.SetDefault("rag.top_k", 4)
	viper.SetDefault("history.max_entries", 40)
}
