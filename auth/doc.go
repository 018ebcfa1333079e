/*
Package auth protects the HTTP tool host with signed bearer tokens.

Tokens are HS256 JWTs issued by a TokenService. Each carries a subject and a
space-separated scope list; the HTTP host requires the "tools" scope.

	tokens, err := auth.NewTokenService(secret, 24*time.Hour)
	if err != nil {
		return err
	}

	// Issue a token, e.g. from the CLI
	token, err := tokens.GenerateToken("ops-bot", auth.ScopeTools)

	// Require it on a fiber group
	api := app.Group("/tools", tokens.Middleware(auth.ScopeTools))

Handlers behind the middleware can read the caller with ClaimsFrom(c).

Rejected requests get the errx JSON body with status 401 (missing or invalid
token) or 403 (missing scope).
*/
package auth
