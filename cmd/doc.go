// Package cmd provides the command-line interface for vitrine.
//
// # Available Commands
//
//   - serve: Serve the testimonial carousel over HTTP with live websocket sessions
//   - preview: Show the carousel in the terminal
//   - validate: Check a testimonials file and the accessibility of its markup
//   - init: Write a starter configuration and testimonials file
//   - health: Query the health endpoint of a running server
//   - version: Print build information
//
// # Command Examples
//
//	// Serve the embedded testimonials on port 3000
//	vitrine serve --port 3000
//
//	// Serve a file and reload it on change, left-to-right arrows
//	vitrine serve --content testimonials.yml --direction ltr
//
//	// Preview in the terminal, starting paused
//	vitrine preview --paused
//
//	// Validate content before deploying
//	vitrine validate --content testimonials.yml --format json
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. VITRINE_CONFIG_FILE, naming the configuration file
//  3. Environment variables (VITRINE_*), also read from a .env file
//  4. Configuration file (.vitrine.yml)
//  5. Default values (lowest priority)
//
// # Error Handling
//
// Configuration, content and port binding failures are reported with
// suggestions for fixing them. serve and preview stop cleanly on Ctrl+C.
package cmd
