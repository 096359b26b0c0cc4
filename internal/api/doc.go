// Package api provides the HTTP API of the Integration List Exporter.
//
// Routes (all JSON unless noted):
//
//	GET    /api/v1/health                         liveness plus dependency checks
//	GET    /api/v1/entries                        loaded entries
//	POST   /api/v1/entries                        create and load an entry
//	DELETE /api/v1/entries/{id}                   unload and delete an entry
//	POST   /api/v1/services/{name}                call a registered command
//	GET    /api/v1/runs?entry_id=&limit=          recent generation runs
//	GET    /metrics                               Prometheus exposition format
//
// Everything under /api/v1 except health requires a bearer JWT signed with
// the configured HS256 secret. With no secret configured the API is open,
// which is only sensible on loopback.
//
// Lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
