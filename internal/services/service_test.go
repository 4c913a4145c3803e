// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfshare/booklend-backend/internal/models"
)

// setupTestDB opens a fresh in-memory sqlite database per test. A single
// connection keeps every gorm session on the same in-memory store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.BorrowRequest{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("secret-password"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestBook(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string) *models.Book {
	t.Helper()

	book := &models.Book{
		OwnerID: ownerID,
		Title:   title,
		Author:  "Test Author",
	}
	require.NoError(t, db.Create(book).Error)
	return book
}
