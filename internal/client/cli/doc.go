// Package cli provides the sealfin command-line client.
//
// It wires configuration, the local preference store, the media-server API
// factory and the browse services, and exposes them two ways: a cobra
// command tree for one-shot use (see NewRootCmd) and an interactive REPL
// started by the shell command (or by running sealfin without arguments).
//
// Key features:
//   - Login to a server; list, switch and remove saved servers
//   - Home feed: continue watching, next up, recently added
//   - Browse libraries, items, seasons and favorites
//   - Toggle played / favorite state
//   - Theme preference, which also selects the output colours
package cli
