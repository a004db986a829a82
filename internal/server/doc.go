// Package server provides HTTP routing, middleware and an in-memory CineMate API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method patterns ("GET /movies/{id}") on an [http.ServeMux],
// so path parameters are read with [http.Request.PathValue].
//
// # Handler Interface
//
// Custom handlers implement [Handler] and return their [Route] table, allowing a handler to
// register many routes (each with its own middleware) in one call to [BasicRouter.Handler].
//
// # Mock API
//
// [MockAPI] serves every endpoint the client calls, with the same payload shapes, from memory.
// Protected routes sit behind [BearerAuth], which answers 401 for a missing or unknown token.
// It backs `cinemate dev mock-api` and the end-to-end tests of the client packages.
package server
