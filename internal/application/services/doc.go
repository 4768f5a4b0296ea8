// Package services runs the server around the generated graphs.
//
// It contains:
//   - the lifecycle manager moving between Offline, Rebuilding, Online and Admin (Lifecycle)
//   - the admin channel request handling (Admin)
//   - the system REST endpoints for access tokens and registration
//   - the task runner and cron scheduler (SchedulerService)
//   - status and config event fan-out (EventBus)
//
// Rebuilds publish a new appctx snapshot as a whole; request handlers only
// ever see one snapshot.
package services
