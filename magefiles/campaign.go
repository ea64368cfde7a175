//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/sh"
)

// dateArg reads an optional YYYY-MM-DD from $DATE.
func dateArg(flag string) []string {
	if d := os.Getenv("DATE"); d != "" {
		return []string{flag, d}
	}
	return nil
}

// Import runs today's scheduled import (or $DATE's).
func Import() error {
	ensureBuilt()
	return sh.RunV(binPath, append([]string{"import"}, dateArg("--date")...)...)
}

// Plan prints the strategies scheduled for today (or $DATE).
func Plan() error {
	ensureBuilt()
	return sh.RunV(binPath, append([]string{"plan"}, dateArg("--date")...)...)
}

// Weekly builds the weekly summary ending today (or $DATE).
func Weekly() error {
	ensureBuilt()
	return sh.RunV(binPath, append([]string{"report", "weekly"}, dateArg("--as-of")...)...)
}

// Stats prints library size, category balance, and campaign progress.
func Stats() error {
	ensureBuilt()
	return sh.RunV(binPath, "library", "stats")
}
