// Package services talks to the remote CineMate REST API.
//
// # Dispatcher
//
// [Dispatcher] is the single HTTP entry point. Every call:
//   - sends Content-Type: application/json
//   - attaches Authorization: Bearer <credential> through an [oauth2.Transport] when the credential slot is set
//   - encodes a JSON body only for POST, PUT and PATCH
//   - maps 401 and 403 to an [APIError] matching [shared.ErrUnauthorized], evicting the stored credential first
//   - maps any other non-2xx status to an [APIError] matching [shared.ErrAPIRequest]
//
// InFlight and LastError expose the transient request state to views; both reset when a call starts.
// An optional [rate.Limiter] spaces calls out. There are no retries.
//
// # CineMate Endpoints
//
// [CineMateService] wraps the dispatcher with one typed method per endpoint and implements [CineMate].
// Response envelopes live in the models package so each endpoint has an explicit shape.
package services
