package demands

import (
	"context"
	"testing"
	"time"

	"naviport-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDemandTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.AgencyPort{}, &domain.Ship{},
		&domain.Demand{}, &domain.DemandEvent{}, &domain.Offer{},
	))
	return &Service{DB: db}, db
}

func seedArmatorWithShip(t *testing.T, db *gorm.DB) (uuid.UUID, *domain.Ship) {
	armator := domain.User{Role: domain.RoleArmator, FullName: "Test Armator", Email: uuid.New().String() + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&armator).Error)
	ship := domain.Ship{ArmatorID: armator.ID, Name: "MV Test", ImoNo: uuid.New().String()[:7], Flag: "TR", GRT: 1000, NRT: 800}
	require.NoError(t, db.Create(&ship).Error)
	return armator.ID, &ship
}

func TestCreateDemand_DeadlineSetsExpiry(t *testing.T) {
	svc, db := setupDemandTest(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	armatorID, ship := seedArmatorWithShip(t, db)

	d, err := svc.Create(context.Background(), armatorID, CreateInput{
		ShipID: ship.ID, Port: "İzmir", Details: "Pilotage", DeadlineHours: 24,
	})
	require.NoError(t, err)
	require.NotNil(t, d.ExpiresAt)
	assert.Equal(t, now.Add(24*time.Hour), d.ExpiresAt.UTC())
	assert.Equal(t, domain.DemandPending, d.Status)
	assert.Equal(t, domain.PriorityNormal, d.Priority)

	var events []domain.DemandEvent
	require.NoError(t, db.Where("demand_id = ?", d.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDemandCreated, events[0].EventType)
}

func TestCreateDemand_NoDeadline(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)

	d, err := svc.Create(context.Background(), armatorID, CreateInput{
		ShipID: ship.ID, Port: "Mersin", Details: "Bunkering",
	})
	require.NoError(t, err)
	assert.Nil(t, d.ExpiresAt)
}

func TestCreateDemand_InvalidDeadline(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)

	_, err := svc.Create(context.Background(), armatorID, CreateInput{
		ShipID: ship.ID, Port: "Mersin", Details: "Bunkering", DeadlineHours: 12,
	})
	assert.ErrorIs(t, err, ErrInvalidDeadline)
}

func TestCreateDemand_ForeignShip(t *testing.T) {
	svc, db := setupDemandTest(t)
	_, ship := seedArmatorWithShip(t, db)
	otherID, _ := seedArmatorWithShip(t, db)

	_, err := svc.Create(context.Background(), otherID, CreateInput{
		ShipID: ship.ID, Port: "Mersin", Details: "Bunkering",
	})
	assert.ErrorIs(t, err, ErrShipNotFound)
}

func TestUpdateDemand_OnlyPending(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)
	d, err := svc.Create(context.Background(), armatorID, CreateInput{ShipID: ship.ID, Port: "İzmir", Details: "Pilotage"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), armatorID, d.ID, UpdateInput{Port: "Aliağa", Details: "Pilotage"})
	require.NoError(t, err)
	assert.Equal(t, "Aliağa", updated.Port)

	require.NoError(t, db.Model(&domain.Demand{}).Where("id = ?", d.ID).Update("status", domain.DemandReviewing).Error)
	_, err = svc.Update(context.Background(), armatorID, d.ID, UpdateInput{Port: "Gemlik", Details: "Pilotage"})
	assert.ErrorIs(t, err, ErrDemandNotPending)
}

func TestUpdateDemand_ForeignOwner(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)
	otherID, _ := seedArmatorWithShip(t, db)
	d, err := svc.Create(context.Background(), armatorID, CreateInput{ShipID: ship.ID, Port: "İzmir", Details: "Pilotage"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), otherID, d.ID, UpdateInput{Port: "Gemlik", Details: "Pilotage"})
	assert.ErrorIs(t, err, ErrDemandNotFound)
}

func TestCancelDemand_OnlyPending(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)
	d, err := svc.Create(context.Background(), armatorID, CreateInput{ShipID: ship.ID, Port: "İzmir", Details: "Pilotage"})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), armatorID, d.ID))

	var got domain.Demand
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, domain.DemandCancelled, got.Status)

	// Already cancelled: conflict, not idempotent success.
	assert.ErrorIs(t, svc.Cancel(context.Background(), armatorID, d.ID), ErrDemandNotCancellable)
}

func TestApproveDemand(t *testing.T) {
	svc, db := setupDemandTest(t)
	armatorID, ship := seedArmatorWithShip(t, db)
	adminID := uuid.New()
	d, err := svc.Create(context.Background(), armatorID, CreateInput{ShipID: ship.ID, Port: "İzmir", Details: "Pilotage"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Demand{}).Where("id = ?", d.ID).Update("status", domain.DemandReviewing).Error)
	require.NoError(t, svc.Approve(context.Background(), adminID, d.ID))

	var got domain.Demand
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, domain.DemandApproved, got.Status)

	assert.ErrorIs(t, svc.Approve(context.Background(), adminID, d.ID), ErrDemandNotApprovable)
	assert.ErrorIs(t, svc.Approve(context.Background(), adminID, uuid.New()), ErrDemandNotFound)
}

func TestRestoreDemand(t *testing.T) {
	svc, db := setupDemandTest(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	armatorID, ship := seedArmatorWithShip(t, db)
	d, err := svc.Create(context.Background(), armatorID, CreateInput{ShipID: ship.ID, Port: "İzmir", Details: "Pilotage", DeadlineHours: 24})
	require.NoError(t, err)

	// Active demands cannot be restored.
	assert.ErrorIs(t, svc.Restore(context.Background(), armatorID, d.ID), ErrDemandNotRestorable)

	require.NoError(t, db.Model(&domain.Demand{}).Where("id = ?", d.ID).Update("status", domain.DemandExpired).Error)
	require.NoError(t, svc.Restore(context.Background(), armatorID, d.ID))

	var got domain.Demand
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, domain.DemandPending, got.Status)
	assert.Nil(t, got.ExpiresAt)
}

func TestExpireSweep(t *testing.T) {
	svc, db := setupDemandTest(t)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	_, ship := seedArmatorWithShip(t, db)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	mk := func(status string, exp *time.Time) uuid.UUID {
		d := domain.Demand{ShipID: ship.ID, Status: status, Port: "İzmir", Details: "x", Priority: domain.PriorityNormal, ExpiresAt: exp}
		require.NoError(t, db.Create(&d).Error)
		return d.ID
	}
	expiredPending := mk(domain.DemandPending, &past)
	expiredReviewing := mk(domain.DemandReviewing, &past)
	approvedPast := mk(domain.DemandApproved, &past)
	noDeadline := mk(domain.DemandPending, nil)
	futurePending := mk(domain.DemandPending, &future)

	count, err := svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	status := func(id uuid.UUID) string {
		var d domain.Demand
		require.NoError(t, db.First(&d, "id = ?", id).Error)
		return d.Status
	}
	assert.Equal(t, domain.DemandExpired, status(expiredPending))
	assert.Equal(t, domain.DemandExpired, status(expiredReviewing))
	assert.Equal(t, domain.DemandApproved, status(approvedPast))
	assert.Equal(t, domain.DemandPending, status(noDeadline))
	assert.Equal(t, domain.DemandPending, status(futurePending))

	// Each swept demand gets an EXPIRED event; immune demands get none.
	var events []domain.DemandEvent
	require.NoError(t, db.Where("event_type = ?", domain.EventDemandExpired).Find(&events).Error)
	require.Len(t, events, 2)
	swept := map[uuid.UUID]bool{events[0].DemandID: true, events[1].DemandID: true}
	assert.True(t, swept[expiredPending])
	assert.True(t, swept[expiredReviewing])

	// Idempotent: a second pass finds nothing and writes nothing.
	count, err = svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	var eventCount int64
	require.NoError(t, db.Model(&domain.DemandEvent{}).Where("event_type = ?", domain.EventDemandExpired).Count(&eventCount).Error)
	assert.Equal(t, int64(2), eventCount)
}

func TestGetForAgency_ArchivedHidden(t *testing.T) {
	svc, db := setupDemandTest(t)
	_, ship := seedArmatorWithShip(t, db)

	d := domain.Demand{ShipID: ship.ID, Status: domain.DemandCancelled, Port: "Mersin", Details: "x", Priority: domain.PriorityNormal}
	require.NoError(t, db.Create(&d).Error)

	// Archived demands are invisible to agencies even by direct id.
	_, err := svc.GetForAgency(context.Background(), d.ID)
	assert.ErrorIs(t, err, ErrDemandNotFound)

	// The unscoped read still serves owners and admins.
	got, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DemandCancelled, got.Status)

	require.NoError(t, db.Model(&domain.Demand{}).Where("id = ?", d.ID).Update("status", domain.DemandPending).Error)
	got, err = svc.GetForAgency(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestListForAgency_EligibilityFilter(t *testing.T) {
	svc, db := setupDemandTest(t)
	_, ship := seedArmatorWithShip(t, db)

	agency := domain.User{Role: domain.RoleAgency, FullName: "Agency", Email: "agency@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&agency).Error)
	require.NoError(t, db.Create(&domain.AgencyPort{AgencyID: agency.ID, PortName: "İzmir"}).Error)

	mk := func(port, status string) uuid.UUID {
		d := domain.Demand{ShipID: ship.ID, Status: status, Port: port, Details: "x", Priority: domain.PriorityNormal}
		require.NoError(t, db.Create(&d).Error)
		return d.ID
	}
	izmirID := mk("izmir liman bolgesi", domain.DemandPending)
	mersinID := mk("Mersin", domain.DemandPending)
	completedIzmir := mk("İzmir", domain.DemandCompleted)

	demands, hasPorts, err := svc.ListForAgency(context.Background(), agency.ID, nil)
	require.NoError(t, err)
	assert.True(t, hasPorts)
	require.Len(t, demands, 1)
	assert.Equal(t, izmirID, demands[0].ID)

	// Deep link bypasses the port filter but never the status filter.
	demands, _, err = svc.ListForAgency(context.Background(), agency.ID, &mersinID)
	require.NoError(t, err)
	require.Len(t, demands, 2)
	assert.Equal(t, mersinID, demands[0].ID)

	demands, _, err = svc.ListForAgency(context.Background(), agency.ID, &completedIzmir)
	require.NoError(t, err)
	assert.Len(t, demands, 1)
}

func TestListForAgency_FailOpenWithoutPorts(t *testing.T) {
	svc, db := setupDemandTest(t)
	_, ship := seedArmatorWithShip(t, db)
	agency := domain.User{Role: domain.RoleAgency, FullName: "Agency", Email: "agency2@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&agency).Error)

	for _, port := range []string{"İzmir", "Mersin", "Samsun"} {
		require.NoError(t, db.Create(&domain.Demand{ShipID: ship.ID, Status: domain.DemandPending, Port: port, Details: "x", Priority: domain.PriorityNormal}).Error)
	}

	demands, hasPorts, err := svc.ListForAgency(context.Background(), agency.ID, nil)
	require.NoError(t, err)
	assert.False(t, hasPorts)
	assert.Len(t, demands, 3)
}

func TestListForArmator_SweepsFirst(t *testing.T) {
	svc, db := setupDemandTest(t)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	armatorID, ship := seedArmatorWithShip(t, db)

	past := now.Add(-time.Minute)
	stale := domain.Demand{ShipID: ship.ID, Status: domain.DemandPending, Port: "İzmir", Details: "x", Priority: domain.PriorityNormal, ExpiresAt: &past}
	require.NoError(t, db.Create(&stale).Error)

	demands, err := svc.ListForArmator(context.Background(), armatorID)
	require.NoError(t, err)
	require.Len(t, demands, 1)
	assert.Equal(t, domain.DemandExpired, demands[0].Status)
}
