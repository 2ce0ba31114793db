// +build !unit

package version

import (
	"regexp"
	"testing"
)

// TestFlagEmpty fails if version.Flag is not empty. Release builds carry no
// flag.
func TestFlagEmpty(t *testing.T) {
	if len(Flag) > 0 {
		t.Fatalf("Version Flag is not empty: %s", Flag)
	}
}

func TestVersionFormat(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9a-z]+)*$`).MatchString(Version) {
		t.Fatalf("Malformed version %s", Version)
	}
}
