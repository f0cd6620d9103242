package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_ContainsStatusTool(t *testing.T) {
	def, ok := Lookup("studio-status")
	require.True(t, ok)
	assert.NotEmpty(t, def.Description)
}

func TestCatalog_NoDuplicateNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Catalog() {
		assert.False(t, seen[def.Name], "duplicate tool name %q", def.Name)
		seen[def.Name] = true
	}
}

func TestLookup_UnknownToolNotFound(t *testing.T) {
	_, ok := Lookup("studio-does_not_exist")
	assert.False(t, ok)
}

func TestUnsupported_EmptyByDefault(t *testing.T) {
	_, ok := Unsupported("studio-run_script")
	assert.False(t, ok)
}
