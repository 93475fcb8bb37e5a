package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"charge-relay/internal/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignCommand(t *testing.T) {
	payload := []byte(`{"type":"charge:confirmed","data":{"id":"ord1","metadata":{}}}`)
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sign", "--secret", "test-secret", path})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		signSecret = ""
	})

	require.NoError(t, rootCmd.Execute())

	got := strings.TrimSpace(out.String())
	assert.Equal(t, signature.Sign(payload, "test-secret"), got)
	assert.True(t, signature.Verify(payload, got, "test-secret"))
}
