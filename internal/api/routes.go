package api

import (
	"net/http"

	"github.com/quillworks/quill/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, specBytes []byte) {
	routes.Register(
		mux,
		domain.Proposals.Handler().Routes(),
		domain.Profiles.Handler().Routes(),
		domain.Templates.Routes(),
		domain.Ledger.Handler().Routes(),
	)

	mux.HandleFunc("GET /openapi.json", serveSpec(specBytes))
}
