// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import "testing"

// A plain push sends every selected paper; --no-duplicates opts in to
// the library lookup, and PDFs are attached unless turned off.
func TestPushFlagDefaults(t *testing.T) {
	noDup := pushCmd.Flags().Lookup("no-duplicates")
	if noDup == nil {
		t.Fatal("no-duplicates flag not registered")
	}
	if noDup.DefValue != "false" {
		t.Errorf("no-duplicates default = %q, want false (duplicate skip is opt-in)", noDup.DefValue)
	}

	attach := pushCmd.Flags().Lookup("attach-pdf")
	if attach == nil {
		t.Fatal("attach-pdf flag not registered")
	}
	if attach.DefValue != "true" {
		t.Errorf("attach-pdf default = %q, want true", attach.DefValue)
	}

	indices := pushCmd.Flags().Lookup("indices")
	if indices == nil || indices.DefValue != "all" {
		t.Errorf("indices default = %v, want all", indices)
	}
}
