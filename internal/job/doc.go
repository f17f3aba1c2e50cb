// Package job runs assist operations in the background.
//
// A Runner owns a bounded in-memory queue and a fixed pool of workers.
// Every job is persisted through store.JobStore before it is queued, so
// its status can be polled and unfinished work is recovered on start.
// Requests arrive as events.JobRequestEvent through EventHandler.
package job
