// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

// Open returns a migrated in-memory database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixture is one salon with a client, a pet, a service and kennels.
type Fixture struct {
	Salon   models.Salon
	User    models.User
	Client  models.Client
	Pet     models.Pet
	Service models.Service
	Kennels []models.Kennel
}

// Seed creates a salon with kennels K1 (small), K2 (medium) and K3 (large)
// and a medium dog.
func Seed(t *testing.T, db *gorm.DB) Fixture {
	t.Helper()

	var f Fixture

	f.Salon = models.Salon{
		Name:     "Happy Paws",
		Slug:     "happy-paws-" + uuid.NewString()[:8],
		Timezone: "UTC",
		Plan:     "free",
	}
	require.NoError(t, db.Create(&f.Salon).Error)

	f.User = models.User{
		SalonID:      f.Salon.ID,
		FullName:     "Maria Groomer",
		Email:        uuid.NewString()[:8] + "@paws.test",
		PasswordHash: "x",
		Role:         "owner",
	}
	require.NoError(t, db.Create(&f.User).Error)

	f.Client = models.Client{
		SalonID: f.Salon.ID,
		Name:    "Ana Souza",
		Phone:   "555-0101",
	}
	require.NoError(t, db.Create(&f.Client).Error)

	size := "medium"
	f.Pet = models.Pet{
		SalonID:  f.Salon.ID,
		ClientID: f.Client.ID,
		Name:     "Rex",
		PetType:  "dog",
		Size:     &size,
	}
	require.NoError(t, db.Create(&f.Pet).Error)

	f.Service = models.Service{
		SalonID:         f.Salon.ID,
		Name:            "Bath",
		Price:           decimal.NewFromInt(40),
		DurationMinutes: 60,
		Active:          true,
	}
	require.NoError(t, db.Create(&f.Service).Error)

	for _, k := range []struct{ number, size string }{
		{"K1", "small"},
		{"K2", "medium"},
		{"K3", "large"},
	} {
		kennel := models.Kennel{
			SalonID:      f.Salon.ID,
			KennelNumber: k.number,
			KennelSize:   k.size,
		}
		require.NoError(t, db.Create(&kennel).Error)
		f.Kennels = append(f.Kennels, kennel)
	}

	return f
}

// Appointment inserts a scheduled appointment for the fixture pet.
func (f Fixture) Appointment(t *testing.T, db *gorm.DB, status string) models.Appointment {
	t.Helper()

	ap := models.Appointment{
		SalonID:         f.Salon.ID,
		ClientID:        f.Client.ID,
		PetID:           f.Pet.ID,
		ScheduledAt:     timeNow(),
		DurationMinutes: 60,
		TotalPrice:      decimal.NewFromInt(40),
		Status:          status,
	}
	require.NoError(t, db.Create(&ap).Error)
	return ap
}

var timeNow = func() time.Time { return time.Now().UTC().Truncate(time.Second) }
