// Package config loads the gradewatch TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/gradewatch/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. GRADEWATCH_API_TOKEN, when set, replaces api_token
//
// # Default Values
//
//   - API URL: http://127.0.0.1:8080
//   - Status poll interval: 30s
//   - Grade list refresh: 60s
//   - Log level / format: info / text
//   - Log file: ~/.local/state/gradewatch/gradewatch.log
//
// # TOML Format
//
//	api_url = "https://api.gradehoraria.com.br"
//	api_token = "..."
//	escola_id = "7d1c..."
//	poll_interval_seconds = 30
//	list_refresh_seconds = 60
//	log_level = "info"
//	log_format = "text"
//	log_file = "~/.local/state/gradewatch/gradewatch.log"
//
// Paths starting with ~ are expanded against the user's home directory and
// made absolute. An unknown log_format is a parse error; escola_id is only
// required by commands that talk to the backend (see Config.Validate).
package config
