// Package scrape holds the domain types, collaborator interfaces and the
// per-URL orchestration pipeline shared by the synchronous API path and the
// asynchronous worker path.
package scrape
