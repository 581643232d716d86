// Package retention enforces evidence retention policies.
//
// The Pruner deletes evaluation records older than the configured
// retention window and can additionally cap the total record count.
// Expiring records may be archived to timestamped JSON files before
// deletion. The Scheduler runs the pruner on a cron schedule.
package retention
