package offers

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

type fixture struct {
	svc       *Service
	db        *gorm.DB
	armatorID uuid.UUID
	agencyID  uuid.UUID
	agency2ID uuid.UUID
	demandID  uuid.UUID
}

func setupOfferTest(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.AgencyPort{}, &domain.Ship{}, &domain.Demand{},
		&domain.DemandEvent{}, &domain.Offer{}, &domain.Review{},
	))

	armator := domain.User{Role: domain.RoleArmator, FullName: "Armator", Email: "armator@example.com", PasswordHash: "x"}
	agency := domain.User{Role: domain.RoleAgency, FullName: "Agency One", Email: "agency1@example.com", PasswordHash: "x"}
	agency2 := domain.User{Role: domain.RoleAgency, FullName: "Agency Two", Email: "agency2@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&armator).Error)
	require.NoError(t, db.Create(&agency).Error)
	require.NoError(t, db.Create(&agency2).Error)

	ship := domain.Ship{ArmatorID: armator.ID, Name: "MV Test", ImoNo: "9074729", Flag: "TR", GRT: 1000, NRT: 800}
	require.NoError(t, db.Create(&ship).Error)
	demand := domain.Demand{ShipID: ship.ID, Status: domain.DemandPending, Port: "İzmir", Details: "Pilotage", Priority: domain.PriorityNormal}
	require.NoError(t, db.Create(&demand).Error)

	return &fixture{
		svc:       &Service{DB: db},
		db:        db,
		armatorID: armator.ID,
		agencyID:  agency.ID,
		agency2ID: agency2.ID,
		demandID:  demand.ID,
	}
}

func price(v float64) *float64 { return &v }

func TestSubmit_FlipsPendingToReviewing(t *testing.T) {
	f := setupOfferTest(t)

	offer, err := f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)
	assert.Equal(t, domain.OfferPending, offer.Status)
	assert.Equal(t, "USD", offer.Currency)

	var demand domain.Demand
	require.NoError(t, f.db.First(&demand, "id = ?", f.demandID).Error)
	assert.Equal(t, domain.DemandReviewing, demand.Status)

	var events []domain.DemandEvent
	require.NoError(t, f.db.Where("demand_id = ? AND event_type = ?", f.demandID, domain.EventOfferSubmitted).Find(&events).Error)
	assert.Len(t, events, 1)

	// A second agency's offer keeps the demand in reviewing.
	_, err = f.svc.Submit(context.Background(), f.agency2ID, SubmitInput{DemandID: f.demandID, Price: price(1400)})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&demand, "id = ?", f.demandID).Error)
	assert.Equal(t, domain.DemandReviewing, demand.Status)
}

func TestSubmit_OnePerAgencyPerDemand(t *testing.T) {
	f := setupOfferTest(t)

	_, err := f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1200)})
	assert.ErrorIs(t, err, ErrOfferExists)

	var count int64
	require.NoError(t, f.db.Model(&domain.Offer{}).Where("demand_id = ?", f.demandID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmit_ClosedDemand(t *testing.T) {
	f := setupOfferTest(t)
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("id = ?", f.demandID).Update("status", domain.DemandCompleted).Error)

	_, err := f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID})
	assert.ErrorIs(t, err, ErrDemandNotBiddable)
}

func TestSubmit_PastDeadline(t *testing.T) {
	f := setupOfferTest(t)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return now }
	past := now.Add(-time.Minute)
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("id = ?", f.demandID).Update("expires_at", past).Error)

	_, err := f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID})
	assert.ErrorIs(t, err, ErrDemandNotBiddable)
}

func TestSubmit_AfterAcceptance(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()

	winner, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, f.armatorID, winner.ID)
	require.NoError(t, err)

	// A completed demand takes no further offers, and none may slip in
	// attached to it.
	_, err = f.svc.Submit(ctx, f.agency2ID, SubmitInput{DemandID: f.demandID, Price: price(1400)})
	assert.ErrorIs(t, err, ErrDemandNotBiddable)

	var pending int64
	require.NoError(t, f.db.Model(&domain.Offer{}).
		Where("demand_id = ? AND status = ?", f.demandID, domain.OfferPending).
		Count(&pending).Error)
	assert.Equal(t, int64(0), pending)
}

func TestSubmit_InvalidPrice(t *testing.T) {
	f := setupOfferTest(t)
	_, err := f.svc.Submit(context.Background(), f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(-5)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestAccept_CompletesDemandAndRejectsLosers(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()

	winner, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)
	loser, err := f.svc.Submit(ctx, f.agency2ID, SubmitInput{DemandID: f.demandID, Price: price(1400)})
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, f.armatorID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferAccepted, accepted.Status)
	require.NotNil(t, accepted.Agency)
	assert.Equal(t, f.agencyID, accepted.Agency.ID)

	var demand domain.Demand
	require.NoError(t, f.db.First(&demand, "id = ?", f.demandID).Error)
	assert.Equal(t, domain.DemandCompleted, demand.Status)

	var rejected domain.Offer
	require.NoError(t, f.db.First(&rejected, "id = ?", loser.ID).Error)
	assert.Equal(t, domain.OfferRejected, rejected.Status)

	var events []domain.DemandEvent
	require.NoError(t, f.db.Where("demand_id = ? AND event_type = ?", f.demandID, domain.EventOfferAccepted).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestAccept_AtMostOnce(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, f.agency2ID, SubmitInput{DemandID: f.demandID, Price: price(1400)})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, f.armatorID, first.ID)
	require.NoError(t, err)

	// The demand is completed; a second acceptance must fail cleanly.
	_, err = f.svc.Accept(ctx, f.armatorID, second.ID)
	assert.ErrorIs(t, err, ErrDemandNotOpen)

	var accepted int64
	require.NoError(t, f.db.Model(&domain.Offer{}).Where("demand_id = ? AND status = ?", f.demandID, domain.OfferAccepted).Count(&accepted).Error)
	assert.Equal(t, int64(1), accepted)
}

func TestAccept_ForeignArmator(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()
	offer, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, uuid.New(), offer.ID)
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestAccept_PastDeadline(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()
	offer, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return now }
	past := now.Add(-time.Minute)
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("id = ?", f.demandID).Update("expires_at", past).Error)

	_, err = f.svc.Accept(ctx, f.armatorID, offer.ID)
	assert.ErrorIs(t, err, ErrDemandNotOpen)
}

func TestListByDemand_RatingsAndOwnership(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&domain.Review{DemandID: uuid.New(), ArmatorID: f.armatorID, AgencyID: f.agencyID, Rating: 4}).Error)
	require.NoError(t, f.db.Create(&domain.Review{DemandID: uuid.New(), ArmatorID: uuid.New(), AgencyID: f.agencyID, Rating: 2}).Error)

	offers, ratings, err := f.svc.ListByDemandForArmator(ctx, f.armatorID, f.demandID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.InDelta(t, 3.0, ratings[f.agencyID], 0.001)

	_, _, err = f.svc.ListByDemandForArmator(ctx, uuid.New(), f.demandID)
	assert.ErrorIs(t, err, ErrDemandNotFound)
}

func TestListByDemandForAgency_EligibilityAndStatus(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)

	// No registered ports: fail-open, the agency sees the list.
	offers, _, err := f.svc.ListByDemandForAgency(ctx, f.agency2ID, f.demandID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	// Registered for a different port: the İzmir demand disappears.
	require.NoError(t, f.db.Create(&domain.AgencyPort{AgencyID: f.agency2ID, PortName: "Mersin"}).Error)
	_, _, err = f.svc.ListByDemandForAgency(ctx, f.agency2ID, f.demandID)
	assert.ErrorIs(t, err, ErrDemandNotFound)

	// Registered for the demand's port: visible again.
	require.NoError(t, f.db.Create(&domain.AgencyPort{AgencyID: f.agency2ID, PortName: "İzmir"}).Error)
	offers, _, err = f.svc.ListByDemandForAgency(ctx, f.agency2ID, f.demandID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	// Archived demands are not served regardless of eligibility.
	require.NoError(t, f.db.Model(&domain.Demand{}).Where("id = ?", f.demandID).Update("status", domain.DemandCancelled).Error)
	_, _, err = f.svc.ListByDemandForAgency(ctx, f.agency2ID, f.demandID)
	assert.ErrorIs(t, err, ErrDemandNotFound)
}

func TestOfferedDemandIDs(t *testing.T) {
	f := setupOfferTest(t)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, f.agencyID, SubmitInput{DemandID: f.demandID, Price: price(1500)})
	require.NoError(t, err)

	ids, err := f.svc.OfferedDemandIDs(ctx, f.agencyID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, f.demandID, ids[0])

	ids, err = f.svc.OfferedDemandIDs(ctx, f.agency2ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
