// Package config loads maruska's configuration.
//
// # Overview
//
// Configuration is layered with koanf. Later layers win:
//
//  1. Built-in defaults
//  2. A TOML file, $XDG_CONFIG_HOME/maruska/config.toml unless a path is given
//  3. Environment variables with the MARUSKA_ prefix
//
// A missing file is not an error; a file that does not parse is. The result
// is validated with go-playground/validator before it is returned, and the
// CLI may override fields afterwards and call Validate again.
//
// # Example File
//
//	host = "http://marietje-noord.marie-curie.nl/api"
//	request_timeout = "90s"
//	retry_attempts = 5
//	poll_rate = 4
//	buffer_size = 5000
//	metrics_addr = "127.0.0.1:9464"
//
//	[log]
//	level = "debug"
//	format = "console"
//	file = "~/maruska.log"
//
// # Environment Variables
//
// Names map onto keys by dropping the prefix and lowercasing; a LOG_ prefix
// selects the [log] table:
//
//	MARUSKA_HOST             host
//	MARUSKA_REQUEST_TIMEOUT  request_timeout
//	MARUSKA_LOG_LEVEL        log.level
//
// # Paths
//
// A leading "~" in the config path or in log.file is expanded to the home
// directory.
package config
