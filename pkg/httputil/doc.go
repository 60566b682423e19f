// Package httputil provides HTTP utilities for standardized request/response handling.
//
// Every error body has the shape {"message": "..."}:
//
//	httputil.WriteBadRequest(w, "eventId is required")
//	httputil.WriteUnauthorized(w, "invalid or expired token")
//	httputil.WriteInternalError(w) // logs stay server-side
//
// JSON requests:
//
//	var req loginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // 400 already written
//	}
//
// Middleware:
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.CORSMiddleware(origins),
//	)(router)
//
// # Related Packages
//
//   - pkg/middleware: Auth gate and admin gate
package httputil
