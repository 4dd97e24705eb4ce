// Package core defines the shared primitives of the pharmamesh pipeline:
// agents, sessions, events, run contexts and the runner contract. Higher level
// packages (agent, runner, notify) build on these types; core itself has no
// knowledge of concrete pipeline stages or data stores.
package core
