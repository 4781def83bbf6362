// cmd/nodelink/http.go
package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/nodelink/internal/mirror"
	"github.com/tamzrod/nodelink/internal/node"
)

// linkView is the read-only client surface the status endpoint exposes.
type linkView interface {
	State() node.State
	Version() int64
	IsConnected() bool
}

type linkStatus struct {
	State     string `json:"state"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
	Connected bool   `json:"connected"`
}

func newRouter(reg *prometheus.Registry, src mirror.Source, link linkView) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)
	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(linkStatus{
			State:     link.State().String(),
			Status:    src.Status().String(),
			Version:   link.Version(),
			Connected: link.IsConnected(),
		})
	}).Methods(http.MethodGet)
	return r
}
