package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the endpoint table and wraps it with the CORS policy.
func NewRouter(h *Handlers, corsOrigins []string) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", h.HandleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/convert", h.HandleConvert).Methods(http.MethodPost)
	router.HandleFunc("/convert-single", h.HandleConvertSingle).Methods(http.MethodPost)
	router.HandleFunc("/transform/rotate", h.HandleRotate).Methods(http.MethodPost)
	router.HandleFunc("/transform/crop", h.HandleCrop).Methods(http.MethodPost)
	router.HandleFunc("/download/{filename}", h.HandleDownload).Methods(http.MethodGet)
	router.HandleFunc("/files", h.HandleListFiles).Methods(http.MethodGet)
	router.HandleFunc("/files/{filename}", h.HandleDelete).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	return c.Handler(router)
}
