package mailtmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerification_EmbedsLink(t *testing.T) {
	text, html, err := Verification(VerificationData{Link: "https://medskill.example/verify/abc123"})
	require.NoError(t, err)
	assert.Contains(t, text, "https://medskill.example/verify/abc123")
	assert.Contains(t, html, `href="https://medskill.example/verify/abc123"`)
}

func TestVerification_EscapesHostileLink(t *testing.T) {
	_, html, err := Verification(VerificationData{Link: `javascript:alert(1)`})
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:alert")
}
