// Package api implements the HTTP REST API and WebSocket server for the
// album catalog.
//
// This package provides:
//   - Registration, login and password change endpoints issuing bearer tokens
//   - Album CRUD guarded by role and ownership checks
//   - Account administration for ADMIN callers
//   - A WebSocket hub that relays catalog events to connected clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Every protected request resolves its bearer token to a Caller through
// auth.SessionResolver, which reloads the user's current role from the
// store. Tokens carry no role, so promotions and demotions apply on the
// next request. WebSocket connections use single-use tickets to keep the
// bearer token out of URLs.
//
// # Status codes
//
// Missing or invalid credentials yield 401, a valid caller without the
// required privilege yields 403, and an unknown album or user yields 404.
// For album updates and deletes the role gate runs before the lookup, so a
// USER caller sees 403 for every ID.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
