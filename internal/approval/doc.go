// Package approval gates tool execution behind a user-selected
// policy.
//
// The policy is two-valued: allow-all runs every tool silently,
// approve-all confirms each call with the user first. A session starts
// with no policy at all; the first input or tool call resolves it,
// interactively when a display is attached and to the stricter
// approve-all when not. Under approve-all with no display attached,
// every tool call is blocked, so non-interactive sessions deny by
// default.
//
// Policy changes are never kept only in memory. Each one is appended
// to the session history as a custom entry tagged "approval-mode" with
// payload {"mode": "<policy>"}, and whenever the active branch changes
// (session start, switch, fork, tree navigation) the gate rescans the
// branch and adopts the last record on it. Forking a session before a
// policy change therefore yields a fork without it, and navigating
// back to an older branch point restores whatever was in effect there.
//
// # Main Types
//
//   - [Gate]: The extension; per-session policy map, tool-call interception
//   - [Policy]: The two-valued mode, [PolicyAllowAll] or [PolicyApproveAll]
//
// # Commands
//
// The gate registers one command, "approval-mode", which re-prompts
// for the policy regardless of the current value. Without a display it
// warns and changes nothing.
package approval
