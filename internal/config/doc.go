// Package config loads the coloringbook client configuration.
//
// # Resolution Order
//
// Later sources win:
//
//  1. Built-in defaults (see Default)
//  2. TOML file, ~/.config/coloringbook/config.toml unless a path is given
//  3. A .env file in the working directory
//  4. The process environment
//
// The persisted server URL preference and command-line flags are applied on
// top of this by the app package.
//
// # TOML Format
//
//	server_url = "https://coloringbook.brerum.com"
//	app_token  = ""
//	log_file   = "~/.local/share/coloringbook/coloringbook.log"
//	log_level  = "info"
//	print_dir  = "~/.local/share/coloringbook/prints"
//	workers    = 4
//
// Every field is optional and blank values keep the default. Tilde paths are
// expanded to the home directory and relative paths are made absolute.
//
// # Environment
//
//	COLORINGBOOK_SERVER_URL  COLORINGBOOK_APP_TOKEN  COLORINGBOOK_LOG_FILE
//	COLORINGBOOK_LOG_LEVEL   COLORINGBOOK_PRINT_DIR  COLORINGBOOK_WORKERS
//
// The .env file uses the same keys. It is parsed with godotenv.Read and never
// written into the process environment, so a variable that is already set
// takes precedence over the file.
//
// # Error Handling
//
// A missing config file or .env file is not an error. Unreadable or
// malformed files are reported as "open config", "read config" or
// "parse config" errors.
package config
