package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"github.com/travelpkg/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(
		&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		WithLogger(zap.NewNop(), gormlogger.Warn),
	)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.AutoMigrate())

	assert.True(t, db.DB.Migrator().HasTable(&models.PackageModel{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.ReservationModel{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.NoticeModel{}))
}

func TestDatabase_Transaction(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.AutoMigrate())

	pkg := newTestPackage(t, "Rollback", "family", 100000, 0)
	boom := errors.New("boom")

	err = db.Transaction(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(models.PackageModelFromDomain(pkg)).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.DB.Model(&models.PackageModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
