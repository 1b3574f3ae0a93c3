package handler

import (
	"log"
	"net/http"

	"keyprobe/internal/auth"
	"keyprobe/internal/config"
	diag "keyprobe/internal/handler"
	"keyprobe/internal/jwtauth"
	"keyprobe/internal/middleware"
)

var environmentHandler = diag.NewEnvironmentInspector(config.LoadDiagnostics)

// DebugEnv is the entry point for /api/debug-env. When INSPECT_JWT_SECRET is
// set the request must carry a bearer token signed with it.
func DebugEnv(w http.ResponseWriter, r *http.Request) {
	inspectAuth, err := config.LoadInspectAuth()
	if err != nil {
		log.Printf("route=/api/debug-env refusing request: %v", err)
		auth.WriteJSONError(w, http.StatusInternalServerError, "inspection auth is misconfigured", auth.TypeServer)
		return
	}

	var verifier middleware.TokenVerifier
	if inspectAuth.Enabled() {
		v, err := jwtauth.NewVerifier(jwtauth.Config{
			Secret: inspectAuth.JWTSecret,
			Issuer: inspectAuth.Issuer,
		})
		if err != nil {
			log.Printf("route=/api/debug-env refusing request: %v", err)
			auth.WriteJSONError(w, http.StatusInternalServerError, "inspection auth is misconfigured", auth.TypeServer)
			return
		}
		verifier = v
	}

	middleware.RequireBearer(verifier)(environmentHandler).ServeHTTP(w, r)
}
