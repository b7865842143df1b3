package service

import (
	"context"
	"time"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// mockTxManager runs the function directly; tests that need to observe
// transaction boundaries can count Calls.
type mockTxManager struct {
	Calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

type mockPetitionRepo struct {
	createFunc       func(ctx context.Context, petition *entity.Petition) error
	getByIDFunc      func(ctx context.Context, id string) (*entity.Petition, error)
	getByGroupIDFunc func(ctx context.Context, groupID string) ([]*entity.Petition, error)
	deleteFunc       func(ctx context.Context, id string) error

	Created []*entity.Petition
	Deleted []string
}

func (m *mockPetitionRepo) Create(ctx context.Context, petition *entity.Petition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, petition)
	}
	m.Created = append(m.Created, petition)
	return nil
}

func (m *mockPetitionRepo) GetByID(ctx context.Context, id string) (*entity.Petition, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPetitionRepo) GetByGroupID(ctx context.Context, groupID string) ([]*entity.Petition, error) {
	if m.getByGroupIDFunc != nil {
		return m.getByGroupIDFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *mockPetitionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

type mockHistoryRepo struct {
	createFunc         func(ctx context.Context, entry *entity.HistoryEntry) error
	getByGroupIDFunc   func(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error)
	getByUserIDFunc    func(ctx context.Context, userID string) ([]*entity.HistoryEntry, error)
	countByGroupIDFunc func(ctx context.Context, groupID string) (int, int, error)

	Created []*entity.HistoryEntry
}

func (m *mockHistoryRepo) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.Created = append(m.Created, entry)
	return nil
}

func (m *mockHistoryRepo) GetByPetitionID(ctx context.Context, petitionID string) (*entity.HistoryEntry, error) {
	return nil, nil
}

func (m *mockHistoryRepo) GetByGroupID(ctx context.Context, groupID string) ([]*entity.HistoryEntry, error) {
	if m.getByGroupIDFunc != nil {
		return m.getByGroupIDFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *mockHistoryRepo) GetByUserID(ctx context.Context, userID string) ([]*entity.HistoryEntry, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockHistoryRepo) CountByGroupID(ctx context.Context, groupID string) (int, int, error) {
	if m.countByGroupIDFunc != nil {
		return m.countByGroupIDFunc(ctx, groupID)
	}
	return 0, 0, nil
}

type mockGroupRepo struct {
	getByIDFunc         func(ctx context.Context, id string) (*entity.Group, error)
	getByInviteCodeFunc func(ctx context.Context, code string) (*entity.Group, error)
	memberIDsFunc       func(ctx context.Context, groupID string) ([]string, error)
	updateMetricsFunc   func(ctx context.Context, metrics *entity.GroupMetrics) error

	AddedPending   []string
	RemovedPending []string
	AddedMembers   []string
	Metrics        []*entity.GroupMetrics
}

func (m *mockGroupRepo) Create(ctx context.Context, group *entity.Group) error {
	return nil
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id string) (*entity.Group, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Group{ID: id, AdminID: "admin-1"}, nil
}

func (m *mockGroupRepo) GetByInviteCode(ctx context.Context, code string) (*entity.Group, error) {
	if m.getByInviteCodeFunc != nil {
		return m.getByInviteCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *mockGroupRepo) AddMember(ctx context.Context, groupID, userID string) error {
	m.AddedMembers = append(m.AddedMembers, userID)
	return nil
}

func (m *mockGroupRepo) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	if m.memberIDsFunc != nil {
		return m.memberIDsFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *mockGroupRepo) AddPendingPetition(ctx context.Context, groupID, petitionID string) error {
	m.AddedPending = append(m.AddedPending, petitionID)
	return nil
}

func (m *mockGroupRepo) RemovePendingPetition(ctx context.Context, groupID, petitionID string) error {
	m.RemovedPending = append(m.RemovedPending, petitionID)
	return nil
}

func (m *mockGroupRepo) UpdateMetrics(ctx context.Context, metrics *entity.GroupMetrics) error {
	if m.updateMetricsFunc != nil {
		return m.updateMetricsFunc(ctx, metrics)
	}
	m.Metrics = append(m.Metrics, metrics)
	return nil
}

type mockUserRepo struct {
	createFunc   func(ctx context.Context, user *entity.User) error
	getByIDFunc  func(ctx context.Context, id string) (*entity.User, error)
	getByIDsFunc func(ctx context.Context, ids []string) ([]*entity.User, error)

	Created      []*entity.User
	AddedHistory []string
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	m.Created = append(m.Created, user)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, Name: "User"}, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, ids)
	}
	users := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, &entity.User{ID: id})
	}
	return users, nil
}

func (m *mockUserRepo) AddHistoryEntry(ctx context.Context, userID, historyID string) error {
	m.AddedHistory = append(m.AddedHistory, historyID)
	return nil
}

type mockSubstitutionRepo struct {
	createFunc           func(ctx context.Context, request *entity.SubstitutionRequest) error
	getByPetitionIDFunc  func(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error)
	respondIfFunc        func(ctx context.Context, id, fromStatus, toStatus string, respondedAt time.Time) (bool, error)
	getPendingByUserFunc func(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error)

	Created []*entity.SubstitutionRequest
}

func (m *mockSubstitutionRepo) Create(ctx context.Context, request *entity.SubstitutionRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	m.Created = append(m.Created, request)
	return nil
}

func (m *mockSubstitutionRepo) GetByPetitionID(ctx context.Context, petitionID string) (*entity.SubstitutionRequest, error) {
	if m.getByPetitionIDFunc != nil {
		return m.getByPetitionIDFunc(ctx, petitionID)
	}
	return nil, nil
}

func (m *mockSubstitutionRepo) GetPendingByUserID(ctx context.Context, userID string) ([]*entity.SubstitutionRequest, error) {
	if m.getPendingByUserFunc != nil {
		return m.getPendingByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSubstitutionRepo) RespondIf(ctx context.Context, id, fromStatus, toStatus string, respondedAt time.Time) (bool, error) {
	if m.respondIfFunc != nil {
		return m.respondIfFunc(ctx, id, fromStatus, toStatus, respondedAt)
	}
	return true, nil
}

type mockNotificationRepo struct {
	createFunc        func(ctx context.Context, notification *entity.Notification) error
	updateInPlaceFunc func(ctx context.Context, id string, update *entity.NotificationUpdate) error

	Created []*entity.Notification
	Updated map[string]*entity.NotificationUpdate
	Read    []string
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notification)
	}
	m.Created = append(m.Created, notification)
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID string) ([]*entity.Notification, error) {
	return m.Created, nil
}

func (m *mockNotificationRepo) UpdateInPlace(ctx context.Context, id string, update *entity.NotificationUpdate) error {
	if m.updateInPlaceFunc != nil {
		return m.updateInPlaceFunc(ctx, id, update)
	}
	if m.Updated == nil {
		m.Updated = make(map[string]*entity.NotificationUpdate)
	}
	m.Updated[id] = update
	return nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.Read = append(m.Read, id)
	return nil
}

type mockOutboxRepo struct {
	createFunc func(ctx context.Context, effect *entity.OutboxEffect) error

	Created []*entity.OutboxEffect
}

func (m *mockOutboxRepo) Create(ctx context.Context, effect *entity.OutboxEffect) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, effect)
	}
	m.Created = append(m.Created, effect)
	return nil
}

func (m *mockOutboxRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error) {
	return nil, nil
}

func (m *mockOutboxRepo) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	return nil
}

func (m *mockOutboxRepo) Reschedule(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error {
	return nil
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	return nil
}

func (m *mockOutboxRepo) CountPending(ctx context.Context) (int, error) {
	return len(m.Created), nil
}

type mockPushSender struct {
	sendFunc func(ctx context.Context, pushToken, title, body string) error

	Sent []string
}

func (m *mockPushSender) Send(ctx context.Context, pushToken, title, body string) error {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, pushToken, title, body)
	}
	m.Sent = append(m.Sent, pushToken)
	return nil
}

type mockSuggester struct {
	suggestFunc func(ctx context.Context, petition *entity.Petition, candidates []*entity.User) (*port.ReplacementSuggestion, error)
}

func (m *mockSuggester) SuggestReplacement(ctx context.Context, petition *entity.Petition, candidates []*entity.User) (*port.ReplacementSuggestion, error) {
	if m.suggestFunc != nil {
		return m.suggestFunc(ctx, petition, candidates)
	}
	return &port.ReplacementSuggestion{MemberID: "u2", MemberName: "Sub", Confidence: 0.9}, nil
}
