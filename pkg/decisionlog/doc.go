// Package decisionlog persists routing decisions and their dispatch outcomes
// to a local SQLite database.
//
// Records are written asynchronously through a buffered Recorder so the
// request path never blocks on storage. A retention scheduler prunes records
// older than the configured retention period on a cron schedule.
package decisionlog
