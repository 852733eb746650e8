// Package uptime displays elapsed process runtime in the status bar.
//
// The [Reporter] extension captures its start timestamp once, at
// construction, and refreshes a status fragment every second while a
// session is active. Session switches restart the display but never
// the clock: elapsed time is process-lifetime. The "uptime" command
// additionally reports the elapsed time as a one-shot notification.
package uptime
