// Package auth registers users, verifies credentials and issues JWTs.
//
// A successful login yields a short-lived access token and a long-lived
// refresh token. Both are HS256 JWTs carrying a type claim; refresh tokens
// are additionally recorded in a tokenstore.Store and stay usable until
// logout removes them or they expire. Refreshing issues a new access token
// and leaves the refresh token in place.
//
// # Configuration
//
//	JWT_SECRET=<secret>        # HS256 signing key
//	JWT_EXPIRE=168h            # Access token lifetime
//	JWT_REFRESH_EXPIRE=720h    # Refresh token lifetime
//	AUTH_BCRYPT_COST=10        # bcrypt cost factor
//	AUTH_TOKEN_STORE=database  # database or redis
//
// # Usage
//
//	svc := auth.NewService(models, store, cfg.Auth)
//	api.Use(auth.RequireAuth(svc))
//
// Extract the caller in handlers:
//
//	userID := auth.UserID(c)
package auth
