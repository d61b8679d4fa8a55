// Package tunnel provides the tunnel registry the I2NP message layer
// installs transit tunnels into and correlates build replies through:
// transit hop state with AES layer encryption, pending tunnels awaiting
// build replies, and thread-safe lookup maps with a tunnel-data queue.
//
// Tunnel pools and path selection live elsewhere; this package only keeps
// the state the message layer needs to relay and to finish builds.
package tunnel
