// Package swagger serves the API documentation endpoints.
package swagger

import (
	"encoding/json"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/wildhaven/parkops-backend/internal/apispec"
)

// ServeSwaggerJSON serves the OpenAPI document as JSON.
func ServeSwaggerJSON(w http.ResponseWriter, r *http.Request) {
	spec, err := apispec.GetSwagger()
	if err != nil {
		http.Error(w, "Failed to load OpenAPI spec", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS off for docs
	json.NewEncoder(w).Encode(spec)
}

// UIHandler serves the interactive Swagger UI backed by the embedded
// spec at /docs/openapi.json.
func UIHandler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL("/docs/openapi.json"),
	)
}
