package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteRuleFile writes a rule document into dir and returns its path.
func WriteRuleFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteBadgeRules writes the BadgeRules document into dir.
func WriteBadgeRules(t *testing.T, dir string) string {
	t.Helper()
	return WriteRuleFile(t, dir, "badge.yml", BadgeRules)
}
