// Package internal contains the implementation packages of vitrine.
//
// # Package Organization
//
//   - carousel: The rotation engine: index, pause state and the single advance timer
//   - adapters: Direction-aware mapping from pointer, key and hover input to engine operations
//   - clock: Time source for the engine, with a manual clock for tests
//   - view: templ components for the page, slide, indicators and controls
//   - accessibility: Checks rendered carousel markup against its accessibility contract
//   - session: One engine per websocket connection, pushing rendered fragments
//   - server: HTTP server, routes, security headers and content reloading
//   - preview: Terminal host for the carousel
//   - content: Testimonials file loading and validation
//   - watcher: Debounced file watching
//   - config: Configuration loading and validation
//   - errors: Typed errors and CLI suggestions
//   - logging: Structured logging
//   - version: Build information
//
// # Inter-Package Communication
//
// The engine knows nothing about its hosts. Hosts (a websocket session or
// the terminal preview) subscribe to engine events and re-render from the
// event's state snapshot; input reaches the engine only through an adapter.
// The server reloads content through the watcher and remounts every session.
package internal
