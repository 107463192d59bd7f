// Package state persists the last applied output value across restarts.
//
// The controller saves after every successful apply and loads once at
// boot, so a power-cycled node comes back at the level it was last
// commanded to. Persistence is best effort: a failed save is logged and
// the in-memory value remains authoritative for the running process.
package state
