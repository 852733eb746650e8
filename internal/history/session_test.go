package history

import (
	"encoding/json"
	"testing"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
)

func TestSession_Append(t *testing.T) {
	sess := NewSession("test")

	first := &Entry{Type: EntryMessage, Role: RoleUser, Text: "hello"}
	if err := sess.Append(first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if first.ID == "" {
		t.Error("expected auto-generated ID, got empty string")
	}
	if first.CreatedAt.IsZero() {
		t.Error("expected auto-generated CreatedAt, got zero")
	}
	if first.ParentID != "" {
		t.Errorf("first entry ParentID = %q, want empty", first.ParentID)
	}
	if got := sess.ActiveID(); got != first.ID {
		t.Errorf("ActiveID() = %q, want %q", got, first.ID)
	}

	second := &Entry{Type: EntryMessage, Role: RoleUser, Text: "again"}
	if err := sess.Append(second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if second.ParentID != first.ID {
		t.Errorf("second entry ParentID = %q, want %q", second.ParentID, first.ID)
	}
	if got := sess.ActiveID(); got != second.ID {
		t.Errorf("ActiveID() = %q, want %q", got, second.ID)
	}
}

func TestSession_Append_RejectsInvalid(t *testing.T) {
	sess := NewSession("test")

	if err := sess.Append(nil); err == nil {
		t.Error("Append(nil) expected error, got nil")
	}
	if err := sess.Append(&Entry{Type: "bogus"}); err == nil {
		t.Error("Append() with unknown type expected error, got nil")
	}

	e := &Entry{Type: EntryMessage, Role: RoleUser, Text: "hi"}
	if err := sess.Append(e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	dup := &Entry{ID: e.ID, Type: EntryMessage, Role: RoleUser, Text: "dup"}
	if err := sess.Append(dup); !errors.Is(err, &errors.AlreadyExistsError{}) {
		t.Errorf("Append() duplicate ID error = %v, want AlreadyExistsError", err)
	}
}

func TestSession_AppendCustom(t *testing.T) {
	sess := NewSession("test")

	e, err := sess.AppendCustom("approval-mode", map[string]string{"mode": "allow-all"})
	if err != nil {
		t.Fatalf("AppendCustom() error = %v", err)
	}

	if e.Type != EntryCustom {
		t.Errorf("entry Type = %q, want %q", e.Type, EntryCustom)
	}
	if !e.IsCustom("approval-mode") {
		t.Error("IsCustom(approval-mode) = false, want true")
	}
	if e.IsCustom("other-tag") {
		t.Error("IsCustom(other-tag) = true, want false")
	}

	var payload map[string]string
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if payload["mode"] != "allow-all" {
		t.Errorf("payload mode = %q, want %q", payload["mode"], "allow-all")
	}
}

func TestSession_AppendCustom_UnmarshalablePayload(t *testing.T) {
	sess := NewSession("test")

	if _, err := sess.AppendCustom("bad", func() {}); err == nil {
		t.Error("AppendCustom() with unmarshalable payload expected error, got nil")
	}
	if sess.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after failed append", sess.Len())
	}
}

func TestSession_Branch_Empty(t *testing.T) {
	sess := NewSession("test")
	if got := sess.Branch(); len(got) != 0 {
		t.Errorf("Branch() on empty session returned %d entries, want 0", len(got))
	}
}

func TestSession_Branch_OldestFirst(t *testing.T) {
	sess := NewSession("test")
	texts := []string{"one", "two", "three"}
	for _, text := range texts {
		if _, err := sess.AppendMessage(RoleUser, text); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
	}

	branch := sess.Branch()
	if len(branch) != len(texts) {
		t.Fatalf("Branch() returned %d entries, want %d", len(branch), len(texts))
	}
	for i, want := range texts {
		if branch[i].Text != want {
			t.Errorf("branch[%d].Text = %q, want %q", i, branch[i].Text, want)
		}
	}
}

func TestSession_Branch_ExcludesAbandonedSide(t *testing.T) {
	sess := NewSession("test")

	root, err := sess.AppendMessage(RoleUser, "root")
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if _, err := sess.AppendMessage(RoleUser, "abandoned"); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	if err := sess.NavigateTo(root.ID); err != nil {
		t.Fatalf("NavigateTo() error = %v", err)
	}
	kept, err := sess.AppendMessage(RoleUser, "kept")
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	branch := sess.Branch()
	if len(branch) != 2 {
		t.Fatalf("Branch() returned %d entries, want 2", len(branch))
	}
	if branch[0].ID != root.ID || branch[1].ID != kept.ID {
		t.Errorf("Branch() = [%q, %q], want [%q, %q]",
			branch[0].Text, branch[1].Text, "root", "kept")
	}

	// The abandoned entry still exists in the tree.
	if sess.Len() != 3 {
		t.Errorf("Len() = %d, want 3", sess.Len())
	}
}

func TestSession_NavigateTo_Unknown(t *testing.T) {
	sess := NewSession("test")
	err := sess.NavigateTo("nope")
	if !errors.Is(err, errors.ErrEntryNotFound) {
		t.Errorf("NavigateTo() error = %v, want ErrEntryNotFound", err)
	}
}

func TestSession_Entries_AppendOrder(t *testing.T) {
	sess := NewSession("test")

	a, _ := sess.AppendMessage(RoleUser, "a")
	b, _ := sess.AppendMessage(RoleUser, "b")
	if err := sess.NavigateTo(a.ID); err != nil {
		t.Fatalf("NavigateTo() error = %v", err)
	}
	c, _ := sess.AppendMessage(RoleUser, "c")

	got := sess.Entries()
	wantOrder := []string{a.ID, b.ID, c.ID}
	if len(got) != len(wantOrder) {
		t.Fatalf("Entries() returned %d entries, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("entries[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}
