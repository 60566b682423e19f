// Package sso implements federated sign-in through Google.
//
// # Overview
//
// GoogleProvider runs the OAuth2 authorization-code flow and verifies the
// returned ID token with go-oidc. Resolver maps the verified profile onto a
// user in the credential store. Handlers ties both to the HTTP routes:
//
//	GET /auth/google           302 to the Google consent screen
//	GET /auth/google/callback  302 to ${FRONTEND_URL}/auth/callback?token=...
//
// Every failure redirects to ${FRONTEND_URL}/login?error=<code> with one of
// access_denied, invalid_state, oauth_failed, profile_incomplete,
// email_unverified, account_conflict or server_error.
//
// # Account Linking
//
// When the Google email already belongs to a local account the MergePolicy
// decides. MergeLink keeps the password and provider, attaches the Google
// subject and takes name and picture from the profile when present.
// MergeReject fails with account_conflict.
//
// # Usage Example
//
//	provider, err := sso.NewGoogleProvider(ctx, sso.GoogleConfig{...})
//	resolver := sso.NewResolver(store, sso.MergeLink)
//	handlers := sso.NewHandlers(provider, resolver, authService,
//		session.NewRedirect(tokenSource, frontendURL), true, metrics)
//	handlers.RegisterRoutes(router)
//
// # Related Packages
//
//   - pkg/auth: Token minting and user types
//   - pkg/session: Callback redirect transport
package sso
