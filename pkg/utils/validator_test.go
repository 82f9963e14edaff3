package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "node01", false},
		{"hyphenated", "gpu-node-3", false},
		{"empty", "", true},
		{"uppercase", "Node01", true},
		{"shell injection", "node01;rm -rf /", true},
		{"command substitution", "$(id)", true},
		{"space", "node 01", true},
		{"leading hyphen", "-node", true},
		{"trailing hyphen", "node-", true},
		{"too long", "n123456789012345678901234567890123456789012345678901234567890123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("first.last@lab"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("   "))
	assert.Error(t, ValidateUsername("bad user"))
	assert.Error(t, ValidateUsername("bad\x00user"))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(22))
	assert.NoError(t, ValidatePort(65535))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'node01'", ShellQuote("node01"))
	assert.Equal(t, `'it'\''s'`, ShellQuote("it's"))
	assert.Equal(t, "''", ShellQuote(""))
}
