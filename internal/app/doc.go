// Package app wires configuration, the grade API client, the status poller
// and the dashboard together. It is the composition root of gradewatch.
//
// # Commands
//
//   - Run: the interactive dashboard. A Refresher reloads the grade list of
//     the configured school and hands it to a poller.Poller, which tracks the
//     jobs still generating and raises toasts when they finish.
//   - Generate: requests an automatic generation and blocks until the job
//     completes, fails or disappears.
//   - Status: prints the grade list, or the status of one grade.
//   - Logs: prints the tail of the log file, optionally for one grade.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/gradewatch/config.toml
//	       ├─────> logging.New()        logrus to the log file
//	       ├─────> gradeapi.NewClient() Rate-limited HTTP client
//	       ├─────> poller.New()         Status tracking, toasts via notify
//	       ├─────> Refresher.Run()      List refresh with backoff
//	       └─────> ui.Run()             Dashboard (blocks)
//
// # Error Handling
//
// Configuration and client construction errors are fatal. List refresh
// failures are logged and retried with exponential backoff capped at five
// minutes; status poll failures are handled by the poller itself.
package app
