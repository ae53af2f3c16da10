// Package jobs runs the audio job pipeline. Submit validates an upload and
// stages it; a fixed pool of workers claims staged jobs oldest-first, renders
// them through the engine under a hard deadline, persists the terminal state,
// delivers the outcome, and cleans the job's staging directory exactly once.
package jobs
