package radix

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/radixdlt/radix-go/src/config"
	"github.com/radixdlt/radix-go/src/ledger"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/radixdlt/radix-go/src/service"
	"github.com/sirupsen/logrus"
)

// Radix is a client kept in sync with the Radix network. Init must be called
// before Run.
type Radix struct {
	Config     *config.Config
	Seeds      peers.Seeds
	Sockets    *net.WebSockets
	Controller *network.Controller
	Store      ledger.AtomStore
	Ledger     *ledger.Ledger
	Registry   *prometheus.Registry
	Service    *service.Service

	logger       *logrus.Entry
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewRadix ...
func NewRadix(conf *config.Config) *Radix {
	return &Radix{
		Config:     conf,
		shutdownCh: make(chan struct{}),
	}
}

func (r *Radix) initSeeds() error {
	if len(r.Config.Seeds) == 0 {
		seeds := peers.NewJSONSeeds(r.Config.DataDir)
		r.logger.WithField("path", seeds.Path()).Debug("Using seeds file")
		r.Seeds = seeds
		return nil
	}

	nodes := []peers.Node{}
	for _, s := range r.Config.Seeds {
		n, err := peers.ParseNode(s, r.Config.UseTLS)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", s, err)
		}
		nodes = append(nodes, n)
	}

	r.Seeds = peers.NewStaticSeeds(nodes...)

	return nil
}

func (r *Radix) initTransport() error {
	r.Sockets = net.NewWebSockets(r.Config.WebSocketConfig(), r.logger)
	return nil
}

func (r *Radix) initController() error {
	selector, err := network.NewPeerSelector(r.Config.PeerSelector)
	if err != nil {
		return err
	}

	fallback, err := network.NewFallback(r.Config.Fallback)
	if err != nil {
		return err
	}

	clients := network.NewNodeClients(r.Sockets, r.logger)

	epics := []network.Epic{
		network.NewDiscoveryEpic(r.Seeds, clients, r.Config.RequestTimeout, r.Config.UseTLS, r.logger),
		network.NewNodeInfoEpic(clients, r.Config.RequestTimeout, r.Config.NodeInfoRetries, r.logger),
		network.NewConnectionEpic(r.Sockets, r.logger),
		network.NewFindANodeEpic(network.FindNodeConfig{
			Selector:                   selector,
			Fallback:                   fallback,
			Compatible:                 network.UniverseCompatibility(r.Config.UniverseMagic),
			MaxSimultaneousConnections: r.Config.MaxSimultaneousConnections,
			Timeout:                    r.Config.FindNodeTimeout,
		}, r.logger),
		network.NewAtomFetchEpic(clients, r.Config.RequestTimeout, r.logger),
		network.NewAtomSubmitEpic(clients, r.Config.RequestTimeout, r.logger),
	}

	r.Registry = prometheus.NewRegistry()

	r.Controller = network.NewController(
		nil,
		epics,
		network.NewMetrics(r.Registry),
		r.logger,
	)

	return nil
}

func (r *Radix) initStore() error {
	if !r.Config.Store {
		r.Store = ledger.NewInmemAtomStore()

		r.logger.Debug("created new in-mem store")
		return nil
	}

	r.logger.WithField("path", r.Config.DatabaseDir).Debug("Attempting to load or create database")

	store, err := ledger.NewBadgerAtomStore(r.Config.DatabaseDir, r.logger)
	if err != nil {
		return err
	}

	r.Store = store

	return nil
}

func (r *Radix) initLedger() error {
	r.Ledger = ledger.NewLedger(r.Controller, r.Store, r.logger)
	return nil
}

func (r *Radix) initService() error {
	if !r.Config.NoService && r.Config.ServiceAddr != "" {
		r.Service = service.NewService(r.Config.ServiceAddr, r.Controller, r.Registry, r.logger)
	}
	return nil
}

// Init creates every component from the configuration.
func (r *Radix) Init() error {
	r.logger = r.Config.Logger()

	if err := r.initSeeds(); err != nil {
		return err
	}

	if err := r.initTransport(); err != nil {
		return err
	}

	if err := r.initController(); err != nil {
		return err
	}

	if err := r.initStore(); err != nil {
		return err
	}

	if err := r.initLedger(); err != nil {
		return err
	}

	if err := r.initService(); err != nil {
		return err
	}

	return nil
}

// Start starts the controller and the service, and asks for a first round of
// discovery.
func (r *Radix) Start() {
	if r.Service != nil {
		go r.Service.Serve()
	}

	r.Controller.Start()
	r.Controller.Dispatch(network.DiscoverMoreNodes{})
}

// Run starts the client and blocks until Shutdown.
func (r *Radix) Run() {
	r.Start()
	<-r.shutdownCh
}

// Shutdown stops every component. It is safe to call more than once.
func (r *Radix) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.logger.Debug("Shutdown")

		if r.Service != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := r.Service.Shutdown(ctx); err != nil {
				r.logger.WithError(err).Warn("Stopping service")
			}
			cancel()
		}

		if err := r.Ledger.Close(); err != nil {
			r.logger.WithError(err).Error("Closing ledger")
		}

		r.Sockets.Shutdown()
		r.Controller.Close()

		close(r.shutdownCh)
	})
}
