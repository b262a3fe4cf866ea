package services

import (
	"context"
	"testing"
	"time"

	"worksite/internal/models"
	"worksite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RecordServiceTestSuite struct {
	suite.Suite
	recordsRepo     *MockDailyRecordsRepository
	correctionsRepo *MockCorrectionsRepository
	siteService     *MockSiteService
	authz           *MockAuthzService
	audit           *MockAuditService
	clock           *clockwork.FakeClock
	service         RecordService
	ctx             context.Context
	actor           *models.Actor
	siteID          uuid.UUID
	masonID         string
	loaderID        string
}

func (suite *RecordServiceTestSuite) SetupTest() {
	suite.recordsRepo = &MockDailyRecordsRepository{}
	suite.correctionsRepo = &MockCorrectionsRepository{}
	suite.siteService = &MockSiteService{}
	suite.authz = &MockAuthzService{}
	suite.audit = &MockAuditService{}
	suite.clock = clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC))
	suite.service = NewRecordService(suite.recordsRepo, suite.correctionsRepo, suite.siteService, suite.authz, suite.audit, suite.clock)
	suite.ctx = context.Background()
	suite.actor = &models.Actor{ID: uuid.New(), Role: models.RoleSupervisor}
	suite.siteID = uuid.New()
	suite.masonID = uuid.New().String()
	suite.loaderID = uuid.New().String()
}

func TestRecordServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecordServiceTestSuite))
}

func (suite *RecordServiceTestSuite) activeSite() *models.Site {
	return &models.Site{
		ID:     suite.siteID,
		Name:   "North Yard",
		Status: models.SiteStatusActive,
	}
}

func (suite *RecordServiceTestSuite) todaysRecord() *models.DailyRecord {
	return &models.DailyRecord{
		ID:           uuid.New(),
		SiteID:       suite.siteID,
		RecordDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		SupervisorID: suite.actor.ID,
		WorkerCounts: map[string]int{suite.masonID: 4, models.TotalKey: 4},
		PaymentsMade: map[string]float64{suite.masonID: 2000, models.TotalKey: 2000},
		Notes:        stringPtr("morning shift"),
	}
}

func (suite *RecordServiceTestSuite) TestCreateRecord_RecomputesTotals() {
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)
	suite.siteService.On("ValidateWorkerTypeKeys", suite.ctx, suite.siteID, mock.Anything).Return(nil)
	suite.recordsRepo.On("Create", suite.ctx, mock.Anything).Return(nil)
	suite.audit.On("Record", suite.ctx, mock.Anything).Return()

	record, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WorkerCounts: map[string]int{
			suite.masonID:  4,
			suite.loaderID: 3,
			models.TotalKey: 99, // client-supplied totals are ignored
		},
		PaymentsMade: map[string]float64{
			suite.masonID: 2000,
		},
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 7, record.WorkerCounts[models.TotalKey])
	assert.Equal(suite.T(), 2000.0, record.PaymentsMade[models.TotalKey])
	assert.Equal(suite.T(), suite.actor.ID, record.SupervisorID)
	assert.False(suite.T(), record.IsLocked)

	if assert.Len(suite.T(), suite.audit.Entries, 1) {
		entry := suite.audit.Entries[0]
		assert.Equal(suite.T(), "daily_records", entry.TableName)
		assert.Equal(suite.T(), models.ActionInsert, entry.Action)
		assert.Equal(suite.T(), suite.actor.ID, *entry.UserID)
	}
	suite.recordsRepo.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestCreateRecord_FutureDate() {
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)

	_, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(suite.T(), err, ErrFutureDate)
	suite.recordsRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestCreateRecord_TodayAcceptedAheadOfUTC() {
	// Early morning in a zone ahead of UTC. The date-only input parses as UTC
	// midnight, which is a later instant than local midnight; the calendar
	// dates still match, so today's record must go through.
	nzdt := time.FixedZone("NZDT", 13*60*60)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 9, 0, 0, 0, nzdt))
	service := NewRecordService(suite.recordsRepo, suite.correctionsRepo, suite.siteService, suite.authz, suite.audit, clock)

	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)
	suite.siteService.On("ValidateWorkerTypeKeys", suite.ctx, suite.siteID, mock.Anything).Return(nil)
	suite.recordsRepo.On("Create", suite.ctx, mock.Anything).Return(nil)
	suite.audit.On("Record", suite.ctx, mock.Anything).Return()

	record, err := service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:       suite.siteID,
		RecordDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WorkerCounts: map[string]int{suite.masonID: 4},
	})
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), record)

	// Tomorrow's date stays rejected from the same clock.
	_, err = service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(suite.T(), err, ErrFutureDate)
}

func (suite *RecordServiceTestSuite) TestCreateRecord_NegativeValues() {
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)

	_, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:       suite.siteID,
		RecordDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WorkerCounts: map[string]int{suite.masonID: -5},
		PaymentsMade: map[string]float64{suite.masonID: -75000},
	})

	assert.ErrorIs(suite.T(), err, ErrNegativeValue)
	suite.recordsRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestCreateRecord_InactiveSite() {
	site := suite.activeSite()
	site.Status = models.SiteStatusInactive
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(site, nil)

	_, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(suite.T(), err, ErrSiteInactive)
}

func (suite *RecordServiceTestSuite) TestCreateRecord_Duplicate() {
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)
	suite.siteService.On("ValidateWorkerTypeKeys", suite.ctx, suite.siteID, mock.Anything).Return(nil)
	suite.recordsRepo.On("Create", suite.ctx, mock.Anything).Return(repositories.ErrDuplicateRecord)

	_, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(suite.T(), err, ErrDuplicateRecord)
	assert.Empty(suite.T(), suite.audit.Entries)
}

func (suite *RecordServiceTestSuite) TestCreateRecord_Unauthorized() {
	suite.siteService.On("GetSite", suite.ctx, suite.siteID).Return(suite.activeSite(), nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(false, nil)

	_, err := suite.service.CreateRecord(suite.ctx, suite.actor, models.RequestMeta{}, &CreateRecordInput{
		SiteID:     suite.siteID,
		RecordDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_Success() {
	record := suite.todaysRecord()
	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)
	suite.siteService.On("ValidateWorkerTypeKeys", suite.ctx, suite.siteID, mock.Anything).Return(nil)

	var applied *models.Correction
	suite.recordsRepo.On("ApplyCorrection", suite.ctx, record, mock.Anything).
		Run(func(args mock.Arguments) {
			applied = args.Get(2).(*models.Correction)
		}).Return(nil)
	suite.audit.On("Record", suite.ctx, mock.Anything).Return()

	patch := &models.RecordPatch{
		WorkerCounts: map[string]int{suite.masonID: 5},
	}
	corrected, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, record.ID, patch, "miscounted crew")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, corrected.WorkerCounts[suite.masonID])
	assert.Equal(suite.T(), 5, corrected.WorkerCounts[models.TotalKey])
	// untouched fields survive the patch
	assert.Equal(suite.T(), 2000.0, corrected.PaymentsMade[suite.masonID])

	if assert.NotNil(suite.T(), applied) {
		assert.Equal(suite.T(), "miscounted crew", applied.CorrectionReason)
		assert.Equal(suite.T(), suite.actor.ID, applied.CorrectedBy)
		assert.Equal(suite.T(), map[string]int{suite.masonID: 4, models.TotalKey: 4},
			applied.OldValues["worker_counts"])
		assert.Equal(suite.T(), map[string]int{suite.masonID: 5, models.TotalKey: 5},
			applied.NewValues["worker_counts"])
	}

	if assert.Len(suite.T(), suite.audit.Entries, 1) {
		entry := suite.audit.Entries[0]
		assert.Equal(suite.T(), models.ActionUpdate, entry.Action)
		assert.Equal(suite.T(), "miscounted crew", *entry.Reason)
	}
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_MissingReason() {
	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, uuid.New(),
		&models.RecordPatch{WorkerCounts: map[string]int{suite.masonID: 5}}, "   ")

	assert.ErrorIs(suite.T(), err, ErrMissingReason)
	suite.recordsRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_EmptyPatch() {
	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, uuid.New(),
		&models.RecordPatch{}, "typo in counts")

	assert.ErrorIs(suite.T(), err, ErrEmptyPatch)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_NegativePayment() {
	record := suite.todaysRecord()
	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)

	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, record.ID,
		&models.RecordPatch{PaymentsMade: map[string]float64{suite.masonID: -2000}}, "typo in amount")

	assert.ErrorIs(suite.T(), err, ErrNegativeValue)
	suite.recordsRepo.AssertNotCalled(suite.T(), "ApplyCorrection", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_NotSameDay() {
	record := suite.todaysRecord()
	record.RecordDate = time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)

	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, record.ID,
		&models.RecordPatch{WorkerCounts: map[string]int{suite.masonID: 5}}, "late fix")

	assert.ErrorIs(suite.T(), err, ErrNotSameDay)
	suite.recordsRepo.AssertNotCalled(suite.T(), "ApplyCorrection", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_Locked() {
	record := suite.todaysRecord()
	record.IsLocked = true
	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)

	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, record.ID,
		&models.RecordPatch{WorkerCounts: map[string]int{suite.masonID: 5}}, "fix")

	assert.ErrorIs(suite.T(), err, ErrRecordLocked)
}

func (suite *RecordServiceTestSuite) TestCorrectRecord_NotFound() {
	recordID := uuid.New()
	suite.recordsRepo.On("GetByID", suite.ctx, recordID).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.CorrectRecord(suite.ctx, suite.actor, models.RequestMeta{}, recordID,
		&models.RecordPatch{WorkerCounts: map[string]int{suite.masonID: 5}}, "fix")

	assert.ErrorIs(suite.T(), err, ErrRecordNotFound)
}

func (suite *RecordServiceTestSuite) TestLockRecord_Success() {
	record := suite.todaysRecord()
	admin := &models.Actor{ID: uuid.New(), Role: models.RoleSiteAdmin}
	now := suite.clock.Now()

	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, admin, suite.siteID).Return(true, nil)
	suite.recordsRepo.On("Lock", suite.ctx, record.ID, now).Return(nil)
	suite.audit.On("Record", suite.ctx, mock.Anything).Return()

	locked, err := suite.service.LockRecord(suite.ctx, admin, models.RequestMeta{}, record.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), locked.IsLocked)
	assert.Equal(suite.T(), now, *locked.LockedAt)

	if assert.Len(suite.T(), suite.audit.Entries, 1) {
		entry := suite.audit.Entries[0]
		assert.Equal(suite.T(), "locked", entry.NewValues["action"])
		assert.Equal(suite.T(), now, entry.NewValues["locked_at"])
	}
}

func (suite *RecordServiceTestSuite) TestLockRecord_AlreadyLocked() {
	record := suite.todaysRecord()
	record.IsLocked = true
	admin := &models.Actor{ID: uuid.New(), Role: models.RoleSiteAdmin}

	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, admin, suite.siteID).Return(true, nil)

	_, err := suite.service.LockRecord(suite.ctx, admin, models.RequestMeta{}, record.ID)

	assert.ErrorIs(suite.T(), err, ErrAlreadyLocked)
	suite.recordsRepo.AssertNotCalled(suite.T(), "Lock", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestLockStale_AuditsSystemEntries() {
	now := suite.clock.Now()
	cutoff := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	suite.recordsRepo.On("LockOlderThan", mock.Anything, cutoff, now).Return(ids, nil)
	suite.audit.On("Record", mock.Anything, mock.Anything).Return()

	locked, err := suite.service.LockStale(suite.ctx, 2)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, locked)
	if assert.Len(suite.T(), suite.audit.Entries, 2) {
		for _, entry := range suite.audit.Entries {
			assert.Nil(suite.T(), entry.UserID)
			assert.Equal(suite.T(), "locked", entry.NewValues["action"])
		}
	}
}

func (suite *RecordServiceTestSuite) TestGetRecord_AttachesCorrections() {
	record := suite.todaysRecord()
	corrections := []*models.Correction{
		{ID: uuid.New(), DailyRecordID: record.ID, CorrectionReason: "recount"},
	}

	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(true, nil)
	suite.correctionsRepo.On("ListByRecord", suite.ctx, record.ID).Return(corrections, nil)

	result, err := suite.service.GetRecord(suite.ctx, suite.actor, record.ID)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.Corrections, 1)
}

func (suite *RecordServiceTestSuite) TestGetRecord_Forbidden() {
	record := suite.todaysRecord()
	suite.recordsRepo.On("GetByID", suite.ctx, record.ID).Return(record, nil)
	suite.authz.On("CanAccessSite", suite.ctx, suite.actor, suite.siteID).Return(false, nil)

	_, err := suite.service.GetRecord(suite.ctx, suite.actor, record.ID)

	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
	suite.correctionsRepo.AssertNotCalled(suite.T(), "ListByRecord", mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestListRecords_Pagination() {
	records := []*models.DailyRecord{suite.todaysRecord()}
	suite.authz.On("ApplyScope", suite.actor, mock.Anything).Return()
	suite.recordsRepo.On("List", suite.ctx, mock.Anything).Return(records, 41, nil)

	page, err := suite.service.ListRecords(suite.ctx, suite.actor, &models.RecordSearchFilter{Limit: 20, Offset: 20})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, page.Page)
	assert.Equal(suite.T(), 41, page.Total)
	assert.Equal(suite.T(), 3, page.Pages)
	suite.authz.AssertExpectations(suite.T())
}
