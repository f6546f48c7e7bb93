//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("brokerage"),
		tcpostgres.WithUsername("brokerage"),
		tcpostgres.WithPassword("brokerage"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(ctx, db))

	return db
}

func TestRepositories_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	addresses := NewAddressRepository(db)
	properties := NewPropertyRepository(db)

	email, err := valueobject.NewEmail("broker@inmobiliaria.com")
	require.NoError(t, err)
	broker := entity.NewUser(email, entity.RoleBroker, "hash", nil)

	t.Run("users", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, broker))

		err := users.Create(ctx, entity.NewUser(email, entity.RoleAdvisor, "other", nil))
		assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyExists))

		found, err := users.FindByEmail(ctx, email.String())
		require.NoError(t, err)
		assert.Empty(t, found.PasswordHash)

		withSecret, err := users.FindByEmailWithSecret(ctx, email.String())
		require.NoError(t, err)
		assert.Equal(t, "hash", withSecret.PasswordHash)

		exists, err := users.ExistsByEmail(ctx, email.String())
		require.NoError(t, err)
		assert.True(t, exists)

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, users.UpdateLastLogin(ctx, broker.ID, now))
		found, err = users.FindByID(ctx, broker.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastLoginAt)
		assert.WithinDuration(t, now, *found.LastLoginAt, time.Second)

		_, err = users.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("properties", func(t *testing.T) {
		address, err := entity.NewAddress("Av. Busch 100", "La Paz", "Miraflores", nil)
		require.NoError(t, err)
		require.NoError(t, addresses.Create(ctx, address))

		ci, _ := valueobject.NewCI("7654321")
		pct, _ := valueobject.NewPercentage(3)
		for i := range 23 {
			price, _ := valueobject.NewMoney(float64(100000+i*1000), "USD")
			p, err := entity.NewProperty(entity.NewPropertyParams{
				AddressID:           address.ID,
				OwnerCI:             ci,
				PublicCode:          "PROP-" + uuid.NewString()[:8],
				Title:               "Departamento",
				Price:               price,
				Surface:             90,
				OperationType:       entity.OperationSale,
				CaptorID:            broker.ID,
				CaptureCommission:   pct,
				PlacementCommission: pct,
			}, time.Now())
			require.NoError(t, err)
			require.NoError(t, properties.Create(ctx, p))
		}

		items, total, err := properties.FindAll(ctx, repository.PropertyFilter{}, 3, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 23, total)
		assert.Len(t, items, 3)

		minPrice := int64(120000 * 100)
		_, total, err = properties.FindAll(ctx, repository.PropertyFilter{MinPriceCents: &minPrice}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)

		first := items[0]
		dup := *first
		dup.ID = uuid.New()
		err = properties.Create(ctx, &dup)
		assert.True(t, errors.Is(err, domainerrors.ErrDuplicatePublicCode))

		require.NoError(t, first.Publish(time.Now()))
		require.NoError(t, first.Close(broker.ID, nil, time.Now()))
		require.NoError(t, properties.Update(ctx, first))

		reloaded, err := properties.FindByPublicCode(ctx, first.PublicCode)
		require.NoError(t, err)
		assert.Equal(t, entity.StateSold, reloaded.State)
		assert.True(t, reloaded.Price.Equal(first.Price))
		require.NotNil(t, reloaded.PlacerID)

		require.NoError(t, properties.Delete(ctx, first.ID))
		assert.ErrorIs(t, properties.Delete(ctx, first.ID), repository.ErrPropertyNotFound)
	})
}
