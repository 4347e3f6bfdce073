package reviews

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

type fixture struct {
	svc       *Service
	db        *gorm.DB
	armatorID uuid.UUID
	agencyID  uuid.UUID
	demandID  uuid.UUID
}

func setupReviewTest(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Ship{}, &domain.Demand{},
		&domain.Offer{}, &domain.Review{},
	))

	armator := domain.User{Role: domain.RoleArmator, FullName: "Armator", Email: "armator@example.com", PasswordHash: "x"}
	agency := domain.User{Role: domain.RoleAgency, FullName: "Agency", Email: "agency@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&armator).Error)
	require.NoError(t, db.Create(&agency).Error)

	ship := domain.Ship{ArmatorID: armator.ID, Name: "MV Test", ImoNo: "9074729", Flag: "TR", GRT: 1000, NRT: 800}
	require.NoError(t, db.Create(&ship).Error)
	demand := domain.Demand{ShipID: ship.ID, Status: domain.DemandCompleted, Port: "İzmir", Details: "Pilotage", Priority: domain.PriorityNormal}
	require.NoError(t, db.Create(&demand).Error)
	offer := domain.Offer{DemandID: demand.ID, AgencyID: agency.ID, Status: domain.OfferAccepted, Currency: "USD"}
	require.NoError(t, db.Create(&offer).Error)

	return &fixture{
		svc:       &Service{DB: db},
		db:        db,
		armatorID: armator.ID,
		agencyID:  agency.ID,
		demandID:  demand.ID,
	}
}

func TestUpsert_CreatesThenEditsInPlace(t *testing.T) {
	f := setupReviewTest(t)
	ctx := context.Background()

	first, err := f.svc.Upsert(ctx, f.armatorID, UpsertInput{DemandID: f.demandID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Rating)
	// Agency is derived from the accepted offer, never from input.
	assert.Equal(t, f.agencyID, first.AgencyID)

	comment := "slow paperwork"
	second, err := f.svc.Upsert(ctx, f.armatorID, UpsertInput{DemandID: f.demandID, Rating: 3, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Rating)

	var count int64
	require.NoError(t, f.db.Model(&domain.Review{}).Where("demand_id = ?", f.demandID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_RequiresCompletedDemand(t *testing.T) {
	f := setupReviewTest(t)
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("id = ?", f.demandID).Update("status", domain.DemandReviewing).Error)

	_, err := f.svc.Upsert(context.Background(), f.armatorID, UpsertInput{DemandID: f.demandID, Rating: 4})
	assert.ErrorIs(t, err, ErrDemandNotCompleted)
}

func TestUpsert_RequiresAcceptedOffer(t *testing.T) {
	f := setupReviewTest(t)
	require.NoError(t, f.db.Model(&domain.Offer{}).Where("demand_id = ?", f.demandID).Update("status", domain.OfferRejected).Error)

	_, err := f.svc.Upsert(context.Background(), f.armatorID, UpsertInput{DemandID: f.demandID, Rating: 4})
	assert.ErrorIs(t, err, ErrNoAcceptedOffer)
}

func TestUpsert_InvalidRating(t *testing.T) {
	f := setupReviewTest(t)
	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Upsert(context.Background(), f.armatorID, UpsertInput{DemandID: f.demandID, Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestUpsert_ForeignDemand(t *testing.T) {
	f := setupReviewTest(t)
	_, err := f.svc.Upsert(context.Background(), uuid.New(), UpsertInput{DemandID: f.demandID, Rating: 4})
	assert.ErrorIs(t, err, ErrDemandNotFound)
}

func TestAgencySummary(t *testing.T) {
	f := setupReviewTest(t)
	ctx := context.Background()
	_, err := f.svc.Upsert(ctx, f.armatorID, UpsertInput{DemandID: f.demandID, Rating: 4})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&domain.Review{DemandID: uuid.New(), ArmatorID: uuid.New(), AgencyID: f.agencyID, Rating: 2}).Error)

	summary, err := f.svc.AgencySummary(ctx, f.agencyID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.InDelta(t, 3.0, summary.Average, 0.001)

	empty, err := f.svc.AgencySummary(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count)
	assert.InDelta(t, 0.0, empty.Average, 0.001)
}
