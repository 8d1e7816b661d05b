// Package reservation keeps the local reservation store consistent with
// Guesty in both directions.
//
// Inbound, the Reconciler applies vendor documents: new reservations are
// created together with their sale transaction, updates overwrite local
// state unless they are older than what is already applied, and updates
// that collide with unpushed local edits are requeued rather than applied.
//
// Outbound, the Dispatcher pushes locally driven changes: creating an
// inquiry, moving it to reserved after a live calendar check, and
// canceling. Pushes run under a Scope; a remote-originated scope turns
// every push into a no-op so mirrored updates never echo back to the
// vendor.
package reservation
