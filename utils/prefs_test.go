package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
)

func setupPrefsDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Preference{}))
	SetPrefsDB(db)
}

func TestGetPreferenceCreatesDefault(t *testing.T) {
	setupPrefsDB(t)

	pref, err := GetPreference()
	require.NoError(t, err)
	assert.Equal(t, "en", pref.Language)
	assert.Empty(t, pref.AuthToken)
}

func TestSavePreference(t *testing.T) {
	setupPrefsDB(t)

	tests := []struct {
		name         string
		language     string
		token        string
		wantLanguage string
		wantToken    string
	}{
		{"set both", "vi", "tok-1", "vi", "tok-1"},
		{"empty language keeps previous", "", "tok-2", "vi", "tok-2"},
		{"empty token keeps previous", "en", "", "en", "tok-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref, err := SavePreference(tt.language, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLanguage, pref.Language)
			assert.Equal(t, tt.wantToken, pref.AuthToken)
		})
	}
}

func TestAuthTokenPersisted(t *testing.T) {
	setupPrefsDB(t)

	assert.Empty(t, AuthToken())

	_, err := SavePreference("", "persisted-token")
	require.NoError(t, err)
	assert.Equal(t, "persisted-token", AuthToken())
}

func TestAuthTokenWithoutDB(t *testing.T) {
	SetPrefsDB(nil)
	assert.Empty(t, AuthToken())
}
