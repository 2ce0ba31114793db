// Package radix wires a complete Radix client together.
//
// A Radix object is created from a config.Config and assembled by Init: seed
// nodes, WebSocket transports, the network controller and its epics, the atom
// store, the ledger and the optional HTTP service. Applications use the
// Ledger to pull addresses and submit atoms, and the Controller to follow the
// network.
//
//	conf := config.NewDefaultConfig()
//	conf.Seeds = []string{"localhost:8080"}
//
//	engine := radix.NewRadix(conf)
//	if err := engine.Init(); err != nil {
//		return err
//	}
//	engine.Start()
//	defer engine.Shutdown()
//
//	sub := engine.Ledger.AtomPuller.Pull(address)
//	for o := range sub.C() {
//		...
//	}
package radix
