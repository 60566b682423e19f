// Package api implements the HTTP interface of the booking service.
//
// # Routes
//
// Public:
//
//	POST /auth/register, POST /auth/login, GET|POST /auth/logout
//	GET  /auth/google, GET /auth/google/callback (when configured)
//	GET  /events, GET /events/{id}
//
// Authenticated:
//
//	GET /auth/me, GET /user
//	POST /bookings, GET /bookings, DELETE /bookings/{eventId}
//
// Admin:
//
//	POST /events, PUT /events/{id}, DELETE /events/{id}
//	GET /admin, GET /admin/test, POST /admin/create
//	PUT /admin/{id}, DELETE /admin/{id}
//
// Every error body is {"message": "..."}. Unexpected failures are logged and
// answered with 500 "Something went wrong".
//
// # Usage Example
//
//	server := api.NewServer(api.Options{
//		Auth:   authService,
//		Store:  store,
//		Tokens: tokenSource,
//		Logger: logger,
//	})
//	http.ListenAndServe(":3000", server)
//
// # Related Packages
//
//   - pkg/middleware: Auth and admin gates
//   - pkg/session: Token delivery
//   - pkg/sso: Federated login routes
package api
