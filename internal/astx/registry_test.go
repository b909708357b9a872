// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package astx

import "testing"

func TestIsGeneratedOrLockMatchesAnyLanguageExtension(t *testing.T) {
	generated := []string{
		"app.min.js", "app.min.css", "app.min.ts",
		"vendor.bundle.js",
		"service.pb.go", "service.pb.cc", "service.pb.h", "service.pb.py",
		"widget.generated.go", "widget.generated.ts", "widget.generated.java",
		"widget.gen.go", "widget.gen.py",
	}
	for _, f := range generated {
		if !IsGeneratedOrLock(f) {
			t.Errorf("IsGeneratedOrLock(%q) = false, want true", f)
		}
	}

	lockFiles := []string{"package-lock.json", "go.sum", "Cargo.lock"}
	for _, f := range lockFiles {
		if !IsGeneratedOrLock(f) {
			t.Errorf("IsGeneratedOrLock(%q) = false, want true", f)
		}
	}

	ordinary := []string{"main.go", "minimal.go", "generator.go", "pubsub.go"}
	for _, f := range ordinary {
		if IsGeneratedOrLock(f) {
			t.Errorf("IsGeneratedOrLock(%q) = true, want false", f)
		}
	}
}
