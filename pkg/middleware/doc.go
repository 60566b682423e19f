// Package middleware provides the authentication and authorization gates.
//
// AuthMiddleware verifies the request token (bearer header first, then the
// token cookie) and attaches an *auth.Identity to the request context:
//
//	gate := middleware.NewAuthMiddleware(codec, tokenSource, metrics)
//	protected := router.NewRoute().Subrouter()
//	protected.Use(gate.Handler)
//
// RequireAdmin runs after it and checks the identity's admin flag:
//
//	admin := protected.NewRoute().Subrouter()
//	admin.Use(middleware.RequireAdmin(metrics))
//
// The admin flag is a snapshot taken when the token was minted. A promotion
// or demotion takes effect on the user's next login.
//
// # Related Packages
//
//   - pkg/auth: Token codec and identity types
//   - pkg/session: Token extraction and delivery
package middleware
