// Package backend is the HTTP client for the Sagenex user API.
//
// # Endpoints
//
//	GET  /api/v1/user/team/tree             → [tree.Response]
//	GET  /api/v1/user/team/placement-queue  → []PendingUser
//	POST /api/v1/user/team/place            ← PlacementRequest
//
// Every request carries the member's bearer token. Trees are always fetched
// fresh: the client never caches and never retries, so a failed call is
// reported straight back to the caller.
//
// # Errors
//
// Failures are returned as *errors.Error with a code describing what went
// wrong:
//
//	NETWORK_ERROR     connection refused, DNS failure, timeout
//	UNAUTHORIZED      401, missing or expired token
//	FORBIDDEN         403
//	NOT_FOUND         404
//	BACKEND_ERROR     any other non-2xx status; the message is the backend's
//	                  {"message"} or {"error"} text when present
//	INVALID_RESPONSE  a 2xx body that does not decode
//
// Requests report to the hooks registered with pkg/observability.
package backend
