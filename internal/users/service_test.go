package users

import (
	"context"
	"testing"

	"naviport-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*Service, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.AgencyPort{}))

	agency := domain.User{Role: domain.RoleAgency, FullName: "Agency", Email: "agency@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&agency).Error)
	return &Service{DB: db}, db, agency.ID
}

func TestUpdateProfile(t *testing.T) {
	svc, _, agencyID := setupUserTest(t)
	phone := "+90 532 000 0000"

	updated, err := svc.UpdateProfile(context.Background(), agencyID, UpdateProfileInput{
		FullName: "Liman Acentesi",
		Phone:    &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Liman Acentesi", updated.FullName)
	require.NotNil(t, updated.Phone)

	_, err = svc.UpdateProfile(context.Background(), agencyID, UpdateProfileInput{FullName: ""})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileInput{FullName: "Ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReplacePorts(t *testing.T) {
	svc, db, agencyID := setupUserTest(t)
	ctx := context.Background()

	out, err := svc.ReplacePorts(ctx, agencyID, []string{"İzmir", "Mersin", "İzmir"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	// Wholesale swap, not merge.
	out, err = svc.ReplacePorts(ctx, agencyID, []string{"Samsun"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Samsun", out[0].PortName)

	var count int64
	require.NoError(t, db.Model(&domain.AgencyPort{}).Where("agency_id = ?", agencyID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Empty list is legal: back to fail-open.
	out, err = svc.ReplacePorts(ctx, agencyID, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = svc.ReplacePorts(ctx, agencyID, []string{""})
	assert.ErrorIs(t, err, ErrEmptyPortName)
}

func TestReplacePorts_TooMany(t *testing.T) {
	svc, _, agencyID := setupUserTest(t)
	names := make([]string, 21)
	for i := range names {
		names[i] = "Port " + uuid.New().String()
	}
	_, err := svc.ReplacePorts(context.Background(), agencyID, names)
	assert.ErrorIs(t, err, ErrTooManyPorts)
}
