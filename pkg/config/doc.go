// Package config provides configuration management for ctrack.
//
// Configuration is resolved in three layers, later layers winning:
//
//   - Built-in defaults
//   - $CTRACK_CONFIG_PATH/ctrack.yml (default /etc/ctrack/ctrack.yml)
//   - Environment variables
//
// Each attribute remembers which layer it came from so that
// "ctrackctl configuration show" can report it.
//
// # Key Configuration Options
//
//   - DATABASE_URL / CTRACK_DATABASE_URL: SQLite path or postgres:// URL
//   - CTRACK_SEED_FILE: CSV catalog used to seed the reference library
//   - CTRACK_ADVISOR_PROVIDER: ollama (default) or genai
//   - CTRACK_ADVISOR_ENDPOINT / OLLAMA_HOST: Ollama base URL
//   - CTRACK_ADVISOR_MODEL: model name, default mistral-nemo
//   - CTRACK_ADVISOR_TIMEOUT: seconds per advisory call, 0 disables
//   - GEMINI_API_KEY: required when the provider is genai
//   - CTRACK_LOG_LEVEL: Logging verbosity
package config
