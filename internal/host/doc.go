// Package host defines the collaborators the exporter reads from.
//
// The home-automation host is never reimplemented here. Each interface is a
// narrow view of one host API, so the report generator can be driven by the
// real Home Assistant and Supervisor clients (subpackages homeassistant and
// supervisor), by local process facts (subpackage local), or by test fakes.
//
//	┌──────────────────────┐     ┌──────────────────────────────┐
//	│   exporter.Generator │────▶│ ConfigRegistry               │ core REST + WebSocket
//	│                      │────▶│ IntegrationLoader            │ core WebSocket
//	│                      │────▶│ CustomComponentRegistry      │ core WebSocket
//	│                      │────▶│ Runtime                      │ core WebSocket or local
//	│                      │────▶│ Supervisor (optional)        │ Supervisor REST
//	└──────────────────────┘     └──────────────────────────────┘
//
// Every method takes a context and may fail independently; callers decide
// which failures are fatal.
package host
