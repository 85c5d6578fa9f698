// Package config handles loading and parsing the tote configuration file.
//
// # Overview
//
// tote reads a small TOML file to find the store's API and the bearer token
// used for the signed-in user, plus a few local knobs for paging, polling and
// logging.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tote/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. TOTE_TOKEN, when set, replaces the token in every case
//
// # Default Values
//
//   - Config file: ~/.config/tote/config.toml
//   - API base: http://127.0.0.1:5000/api
//   - Page size: 10 orders (capped at 50)
//   - Poll interval: 15s
//   - Log file: ~/.local/state/tote/tote.log
//   - Log level: info
//   - Log format: json
//
// # TOML Format
//
//	api_base = "https://shop.example.com/api"
//	token = "eyJhbGciOi..."
//	page_size = 10
//	poll_seconds = 15
//	log_file = "~/.local/state/tote/tote.log"
//	log_level = "info"     # debug | info | warn | error
//	log_format = "json"    # json | console
//
// Every field is optional. Strings are trimmed and paths are tilde-expanded.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Unknown log_level or log_format values
//
// Missing config files are NOT an error. An unauthenticated tote still starts;
// the first request reports the backend's rejection.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return fmt.Errorf("load config: %w", err)
//	}
//	client, err := shop.NewClient(cfg.APIBase, cfg.Token)
package config
