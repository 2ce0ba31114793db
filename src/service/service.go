package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

const timeout = 15 * time.Second

// NetworkView is the part of the network controller the service reads.
type NetworkView interface {
	State() *network.NetworkState
}

// Service ...
type Service struct {
	bindAddress string
	view        NetworkView
	gatherer    prometheus.Gatherer
	router      *mux.Router
	server      *http.Server
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, view NetworkView, gatherer prometheus.Gatherer, logger *logrus.Entry) *Service {
	service := &Service{
		bindAddress: bindAddress,
		view:        view,
		gatherer:    gatherer,
		router:      mux.NewRouter(),
		logger:      logger,
	}

	service.registerHandlers()

	service.server = &http.Server{
		Handler:      service.router,
		Addr:         bindAddress,
		WriteTimeout: timeout,
		ReadTimeout:  timeout,
	}

	return service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering Radix API handlers")
	s.router.HandleFunc("/stats", s.makeHandler(s.GetStats)).Methods("GET")
	s.router.HandleFunc("/nodes", s.makeHandler(s.GetNodes)).Methods("GET")
	s.router.HandleFunc("/nodes/{node}", s.makeHandler(s.GetNode)).Methods("GET")

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the router serving the API.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving Radix API")

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// Shutdown stops the server.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NodeView is the JSON form of a NodeState.
type NodeView struct {
	Node     peers.Node      `json:"node"`
	Status   string          `json:"status"`
	Info     *peers.NodeInfo `json:"info,omitempty"`
	Universe string          `json:"universe,omitempty"`
	Magic    int64           `json:"magic,omitempty"`
}

func newNodeView(ns network.NodeState) NodeView {
	view := NodeView{
		Node:   ns.Node,
		Status: ns.Status.String(),
		Info:   ns.Info,
	}
	if ns.Universe != nil {
		view.Universe = ns.Universe.Name
		view.Magic = ns.Universe.Magic
	}
	return view
}

// GetStats returns the number of nodes in each status.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	state := s.view.State()

	stats := map[string]int{
		"nodes": state.Len(),
	}
	counts := state.CountByStatus()
	for _, st := range net.Statuses {
		stats[st.String()] = counts[st]
	}

	writeJSON(w, stats)
}

// GetNodes ...
func (s *Service) GetNodes(w http.ResponseWriter, r *http.Request) {
	state := s.view.State()

	res := []NodeView{}
	for _, ns := range state.Nodes() {
		res = append(res, newNodeView(ns))
	}

	writeJSON(w, res)
}

// GetNode returns the state of a single node, given as host:port.
func (s *Service) GetNode(w http.ResponseWriter, r *http.Request) {
	param := mux.Vars(r)["node"]

	node, err := peers.ParseNode(param, false)
	if err != nil {
		s.logger.WithError(err).Errorf("Parsing node parameter %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	ns, ok := s.view.State().Get(node)
	if !ok {
		http.Error(w, "unknown node "+param, http.StatusNotFound)

		return
	}

	writeJSON(w, newNodeView(ns))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(v)
}
