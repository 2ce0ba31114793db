// Package config defines the configuration for a Radix client.
//
// Regardless of how the client is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// configuration options, the client relies on a data directory, defined by
// Config.DataDir, where it expects to find a few additional files:
//
//  radix.toml // (optional) configuration read by the CLI.
//  seeds.json // a JSON file listing the seed nodes, used when no seeds are given.
//  badger_db  // the atom store, when Store is set.
package config
