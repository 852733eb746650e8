// Package history provides the session tree: append-only conversation
// entries linked by parent pointers, with JSONL persistence.
//
// A session is a tree, not a list. Appending always parents onto the
// active entry, and navigation can move the active pointer to any
// existing entry, so alternative branches accumulate without ever
// rewriting what came before. Extensions persist their own state by
// filing custom entries under a tag, which ride along with the
// conversation through forks and branch switches.
//
// # Main Types
//
//   - [Entry]: One immutable node; a message or a tagged custom record
//   - [Session]: The entry tree plus the active pointer
//   - [Manager]: Session registry, active-session tracking, fork
//   - [Store]: One JSONL file per session; append on write, replay on load
//
// # Ordering Guarantee
//
// [Session.Branch] returns the live branch oldest first, root to
// active entry. Scanning a branch for the last occurrence of a custom
// tag therefore always finds the most recently appended record; state
// restoration throughout gatehouse relies on this.
//
// # Persistence
//
// Each session lives in {dir}/{id}.jsonl. The first line is a header
// record with the session metadata; every append adds an entry record
// and every explicit navigation adds a state record. Loading replays
// the lines in order, skipping malformed ones with a warning.
// [Store.Rewrite] compacts a file via the write-temp-rename idiom.
//
// # Thread Safety
//
// [Session], [Manager], and [Store] are all safe for concurrent use.
//
// # Basic Usage
//
//	store, err := history.NewStore(dir, logger)
//	if err != nil {
//	    return err
//	}
//	mgr := history.NewManager(store, logger)
//	if err := mgr.Load(); err != nil {
//	    return err
//	}
//
//	sess, err := mgr.Create("default")
//	if err != nil {
//	    return err
//	}
//	if _, err := sess.AppendMessage(history.RoleUser, "hello"); err != nil {
//	    return err
//	}
//	for _, e := range sess.Branch() {
//	    fmt.Println(e.Role, e.Text)
//	}
package history
