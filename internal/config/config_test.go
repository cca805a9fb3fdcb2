package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "data/test.db")
		t.Setenv("PORT", "9090")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "123, 456")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/test.db" {
			t.Errorf("Expected DatabasePath to be 'data/test.db', got '%s'", cfg.DatabasePath)
		}
		if cfg.Port != "9090" {
			t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[0] != 123 || cfg.TelegramAllowedUserIDs[1] != 456 {
			t.Errorf("Expected allowed user IDs [123 456], got %v", cfg.TelegramAllowedUserIDs)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "data/test.db")
		os.Unsetenv("PORT")
		os.Unsetenv("GIT_SHA")
		os.Unsetenv("GEMINI_MODEL")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
		}
		if cfg.GitSHA != "local" {
			t.Errorf("Expected default GitSHA 'local', got '%s'", cfg.GitSHA)
		}
		if cfg.GeminiModel != "gemini-1.5-flash" {
			t.Errorf("Expected default GeminiModel 'gemini-1.5-flash', got '%s'", cfg.GeminiModel)
		}
	})

	t.Run("MissingDatabasePath", func(t *testing.T) {
		os.Unsetenv("DATABASE_PATH")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing DATABASE_PATH, got nil")
		}
		expectedError := "DATABASE_PATH environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidAllowedUserIDs", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "data/test.db")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "123,abc")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_ALLOWED_USER_IDS, got nil")
		}
	})
}
