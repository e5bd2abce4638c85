package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/Sumitdevelops/codered/engine"
	"github.com/Sumitdevelops/codered/registry"
)

type API struct {
	Address  string
	Port     int
	Engine   *engine.Engine
	Registry *registry.Registry
	Router   *chi.Mux
}

type ErrorResponse struct {
	HTTPStatusCode int
	Message        string
}
