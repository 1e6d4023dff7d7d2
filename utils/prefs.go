package utils

import (
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
)

var (
	prefsDB *gorm.DB
	once    sync.Once
	mu      sync.RWMutex
)

// InitPrefs membuka database preferensi lokal (token auth + bahasa UI).
func InitPrefs(dataDir string) (*gorm.DB, error) {
	var initErr error
	once.Do(func() {
		path := filepath.Join(dataDir, "console.db")
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			initErr = err
			return
		}
		if err := db.AutoMigrate(&models.Preference{}); err != nil {
			initErr = err
			return
		}
		mu.Lock()
		prefsDB = db
		mu.Unlock()
	})
	return prefsDB, initErr
}

// SetPrefsDB meng-inject koneksi langsung, dipakai oleh test.
func SetPrefsDB(db *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	prefsDB = db
}

// GetPreference mengembalikan baris preferensi, membuat default kalau kosong.
func GetPreference() (*models.Preference, error) {
	mu.RLock()
	db := prefsDB
	mu.RUnlock()

	var pref models.Preference
	if err := db.First(&pref).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		pref = models.Preference{Language: "en", UpdatedAt: time.Now()}
		if err := db.Create(&pref).Error; err != nil {
			return nil, err
		}
	}
	return &pref, nil
}

// SavePreference menyimpan bahasa dan/atau token baru.
func SavePreference(language, authToken string) (*models.Preference, error) {
	pref, err := GetPreference()
	if err != nil {
		return nil, err
	}

	mu.RLock()
	db := prefsDB
	mu.RUnlock()

	if language != "" {
		pref.Language = language
	}
	if authToken != "" {
		pref.AuthToken = authToken
	}
	pref.UpdatedAt = time.Now()
	if err := db.Save(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

// AuthToken mengembalikan token yang dipersist; string kosong jika belum ada.
func AuthToken() string {
	mu.RLock()
	db := prefsDB
	mu.RUnlock()
	if db == nil {
		return ""
	}

	pref, err := GetPreference()
	if err != nil {
		return ""
	}
	return pref.AuthToken
}
