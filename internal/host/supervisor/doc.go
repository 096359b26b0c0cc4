// Package supervisor is a client for the Home Assistant Supervisor REST API.
//
// The Supervisor is present only in supervised installations (Home Assistant
// OS and Supervised). Inside an add-on container it is reachable at
// http://supervisor with the SUPERVISOR_TOKEN the Supervisor injects.
//
// Every response is wrapped in {"result": "ok", "data": {...}}; the client
// unwraps data and turns {"result": "error"} into ErrRequestFailed.
// Transient failures are retried by go-retryablehttp.
package supervisor
