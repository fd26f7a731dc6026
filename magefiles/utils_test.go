//go:build mage

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCmdRunsInDir(t *testing.T) {
	dir := t.TempDir()
	out, err := executeCmd("pwd", withDir(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimSpace(out)))
}

func TestExecuteCmdAddsEnv(t *testing.T) {
	out, err := executeCmd("sh", withArgs("-c", "echo $VKCORE_MAGE_TEST_VALUE"), withEnv("VKCORE_MAGE_TEST_VALUE=42"))
	require.NoError(t, err)
	assert.Equal(t, "42", strings.TrimSpace(out))
}

func TestExecuteCmdReportsFailure(t *testing.T) {
	_, err := executeCmd("sh", withArgs("-c", "exit 3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh -c exit 3")
}
