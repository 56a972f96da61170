// Command ctrackctl runs and administers ctrack, a compliance
// self-assessment tracker.
//
// ctrack keeps a reference library of security controls (NIST SP 800-53 by
// default), records a yearly implementation statement and score for each
// control, and can ask a language model whether a saved statement is
// sufficient.
//
// # Quick Start
//
//	# Create the schema and load the control catalog
//	ctrackctl db migrate
//	ctrackctl library seed --file NIST_SP-800-53_rev5_catalog_load.csv
//
//	# Start the server
//	ctrackctl server
//
//	# Record and review an assessment
//	ctrackctl assessment submit AC-2 --year 2026 --score 3 --statement "Accounts are reviewed quarterly."
//	ctrackctl analyze AC-2 --year 2026
//	ctrackctl export --format html --out history.html
//
// # Environment Variables
//
//   - DATABASE_URL / CTRACK_DATABASE_URL: SQLite file path or postgres:// URL
//   - CTRACK_CONFIG_PATH: directory holding ctrack.yml (default /etc/ctrack)
//   - CTRACK_SEED_FILE: catalog CSV loaded into an empty library
//   - CTRACK_ADVISOR_PROVIDER: ollama (default) or genai
//   - OLLAMA_HOST / CTRACK_ADVISOR_ENDPOINT: Ollama server address
//   - CTRACK_ADVISOR_MODEL: model name (default mistral-nemo)
//   - GEMINI_API_KEY: API key for the genai provider
//   - CTRACK_LOG_LEVEL: debug, info, warn or error
//   - PORT / BIND_ADDRESS: server listen address
package main
