package localization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewLanguage(t *testing.T) {
	l, err := NewLanguage("English", "en-US", "EN")
	require.NoError(t, err)
	assert.Equal(t, "en", l.UniqueSeoCode)
	assert.Equal(t, "en-US", l.LanguageCulture)
	assert.Equal(t, language.AmericanEnglish, l.Tag())
	assert.True(t, l.Published)

	_, err = NewLanguage("Bad", "not a culture!", "xx")
	assert.Error(t, err)

	_, err = NewLanguage("German", "de-DE", "deu")
	assert.Error(t, err)
}

func TestNewLocaleStringResource(t *testing.T) {
	r, err := NewLocaleStringResource(uuid.New(), "  Account.Login ", "Log in")
	require.NoError(t, err)
	assert.Equal(t, "account.login", r.ResourceName)

	_, err = NewLocaleStringResource(uuid.New(), "   ", "x")
	assert.Error(t, err)
}
