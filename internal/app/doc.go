// Package app wires platen together: it loads configuration and
// preferences, builds the WebPrint client and the task registry, runs
// the background status poller, and hands everything to the UI.
//
// The poller refreshes two independent views every cycle: the overall
// queue status, and per-task detail for every task the local registry
// tracks. Tracked tasks are fetched concurrently and merged back in
// registry order; a task whose fetch fails is skipped for that cycle
// rather than failing the batch.
package app
