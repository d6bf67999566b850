// Package cli is the conops command line: a cobra command tree over the
// client services.
//
// Every invocation loads configuration, opens the local cache and builds
// the services once, in the root command's pre-run hook. Commands then run
// on the calling goroutine. `watch` is the only long-running command; it
// keeps the event stream open and runs each stream-triggered sync on its
// own goroutine so the store keeps a single writer.
//
//	conops login -C ACME2026 -u ann
//	conops sync --full
//	conops attendees list ACME2026 --search smith
//	conops attendees checkin ACME2026 1042
//	conops watch --metrics-addr 127.0.0.1:9400
package cli
