// Package queue persists audio jobs in SQLite and models their lifecycle.
//
// A Job moves through received → validated → staged → processing and ends in
// exactly one terminal state (completed, failed, timed_out, cancelled). The
// store provides FIFO claiming for workers, conditional transitions so a job
// occupies at most one concurrency slot, and an exactly-once cleanup marker.
package queue
