package mailgun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailer_RequiresSettings(t *testing.T) {
	_, err := NewMailer("", "key", "MedSkill <noreply@mg.medskill.id>")
	assert.Error(t, err)

	m, err := NewMailer("mg.medskill.id", "key", "MedSkill <noreply@mg.medskill.id>")
	assert.NoError(t, err)
	assert.NotNil(t, m)
}
