// Package config loads process configuration for the conops CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional JSON or YAML file, chosen by extension. The path comes from
//     --config, then CONOPS_CONFIG, then <user config dir>/conops/config.yaml
//     when that file exists.
//  3. Environment variables prefixed with CONOPS_ (e.g. CONOPS_LOG_LEVEL).
//  4. Command-line flags that were set explicitly.
//
// Server host, port and TLS are persisted settings of the client rather
// than process configuration. The values here are only overrides; the CLI
// writes them through to the settings store when present.
//
// # File schema
//
//	db_path: /var/lib/conops/cache.db
//	log:
//	  level: debug
//	  format: json
//	  file: /var/log/conops.log
//	server:
//	  host: reg.example.org
//	  port: 443
//	  tls: true
//	stream:
//	  retry_delay: 5s
//	request_timeout: 2m # optional, no timeout when absent
//	metrics_addr: 127.0.0.1:9400
package config
