// Package state holds the shared snapshot exchanged between the poller
// and the UI.
//
// The poller writes, the UI reads; a Store guards one Snapshot with a
// read-write mutex and hands out defensive copies. Queue status and
// task details are updated through separate setters with separate error
// fields, so a failure on one path never disturbs the other's data —
// the queue card keeps showing its last known numbers while task
// polling struggles, and vice versa.
package state
