// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"fmt"
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T, maxEntries int) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "activity.db"), maxEntries)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestLog_RecordAndRecent(t *testing.T) {
	log := openTestLog(t, 100)

	if err := log.Record("alice", "create", "lead", "l1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := log.Record("bob", "delete", "client", "c1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Actor != "bob" || entries[0].Verb != "delete" || entries[0].Kind != "client" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].RecordID != "l1" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[0].At.IsZero() {
		t.Error("timestamp must be set")
	}
}

func TestLog_RecentLimit(t *testing.T) {
	log := openTestLog(t, 100)
	for i := 0; i < 5; i++ {
		if err := log.Record("alice", "update", "lead", fmt.Sprintf("l%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := log.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("len = %d, want 3", len(entries))
	}
	if entries[0].RecordID != "l4" {
		t.Errorf("entries[0] = %+v, want the newest", entries[0])
	}
}

func TestLog_PrunesToMaxEntries(t *testing.T) {
	log := openTestLog(t, 3)
	for i := 0; i < 10; i++ {
		if err := log.Record("alice", "create", "lead", fmt.Sprintf("l%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := log.Recent(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d after prune, want 3", len(entries))
	}
	// Only the newest survive.
	if entries[0].RecordID != "l9" || entries[2].RecordID != "l7" {
		t.Errorf("kept %+v", entries)
	}
}

func TestLog_EmptyRecent(t *testing.T) {
	log := openTestLog(t, 10)
	entries, err := log.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d on empty log", len(entries))
	}
}
