// Package ui implements the platen terminal interface with Bubble Tea.
//
// The UI is a thin presentation layer: it never talks to the WebPrint
// server for status data. The background poller keeps a state.Store up
// to date, and the UI re-reads a snapshot of it on every tick. Direct
// client calls happen only for user actions (submitting a document,
// cancelling a task, pausing or clearing the queue) and for the
// on-demand printer list.
//
// Three views share a common header and command bar:
//
//   - Queue: the tracked print tasks with a detail pane
//   - Printers: the printers the server exposes
//   - Submit: a form for uploading a document to print
//
// Destructive actions (cancel, untrack, clear queue) go through a
// confirmation modal. Themes are cycled with T and persisted via the
// prefs package.
package ui
