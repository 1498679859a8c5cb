// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/personal-task-api/internal/database"
	"github.com/yukikurage/personal-task-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a pending task owned by userID.
func CreateTask(t *testing.T, db *gorm.DB, userID uint64, title string, due string, priority models.TaskPriority) *models.Task {
	t.Helper()

	dueDate, err := time.Parse("2006-01-02", due)
	require.NoError(t, err)

	task := &models.Task{
		UserID:   userID,
		Title:    title,
		DueDate:  dueDate,
		Priority: priority,
		Status:   models.TaskStatusPending,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
