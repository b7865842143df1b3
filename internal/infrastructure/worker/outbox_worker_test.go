package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/service"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
)

type mockOutboxRepo struct {
	getDueFunc func(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error)

	Processed   []string
	Rescheduled []string
	Failed      []string
	Attempts    map[string]int
	NextAt      map[string]time.Time
}

func (m *mockOutboxRepo) Create(ctx context.Context, effect *entity.OutboxEffect) error {
	return nil
}

func (m *mockOutboxRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error) {
	if m.getDueFunc != nil {
		return m.getDueFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockOutboxRepo) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	m.Processed = append(m.Processed, id)
	return nil
}

func (m *mockOutboxRepo) Reschedule(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error {
	m.Rescheduled = append(m.Rescheduled, id)
	if m.Attempts == nil {
		m.Attempts = make(map[string]int)
		m.NextAt = make(map[string]time.Time)
	}
	m.Attempts[id] = attempts
	m.NextAt[id] = nextAttemptAt
	return nil
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	m.Failed = append(m.Failed, id)
	return nil
}

func (m *mockOutboxRepo) CountPending(ctx context.Context) (int, error) {
	return 0, nil
}

type mockNotificationService struct {
	err   error
	Calls []string
}

func (m *mockNotificationService) call(name string) error {
	m.Calls = append(m.Calls, name)
	return m.err
}

func (m *mockNotificationService) CreateNotification(ctx context.Context, userID, notifType, title, message string, extras *service.NotificationExtras) error {
	return nil
}

func (m *mockNotificationService) NotifyAdminNewPetition(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("admin_new_petition")
}

func (m *mockNotificationService) NotifyPetitionApproved(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("petition_approved")
}

func (m *mockNotificationService) NotifyPetitionRejected(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("petition_rejected")
}

func (m *mockNotificationService) NotifySubstitutionRequest(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("substitution_request")
}

func (m *mockNotificationService) NotifySubstitutionAccepted(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("substitution_accepted")
}

func (m *mockNotificationService) NotifySubstitutionRejected(ctx context.Context, p *entity.EffectPayload) error {
	return m.call("substitution_rejected")
}

func (m *mockNotificationService) ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return nil
}

type mockMetricsService struct {
	err    error
	Groups []string
}

func (m *mockMetricsService) UpdateGroupMetrics(ctx context.Context, groupID string) error {
	m.Groups = append(m.Groups, groupID)
	return m.err
}

func effectOf(t *testing.T, id, effectType string, payload *entity.EffectPayload) *entity.OutboxEffect {
	t.Helper()
	encoded, err := entity.EncodePayload(payload)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return &entity.OutboxEffect{
		ID:      id,
		Type:    effectType,
		Payload: encoded,
		Status:  entity.EffectStatusPending,
	}
}

func newWorkerFixture(repo *mockOutboxRepo, notif *mockNotificationService, metrics *mockMetricsService) *OutboxWorker {
	w := NewOutboxWorker(DefaultOutboxWorkerConfig(), repo, notif, metrics, zap.NewNop())
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w
}

func TestOutboxWorkerProcessesNotificationEffect(t *testing.T) {
	repo := &mockOutboxRepo{}
	notif := &mockNotificationService{}
	metrics := &mockMetricsService{}
	w := newWorkerFixture(repo, notif, metrics)

	effect := effectOf(t, "e1", entity.EffectNotifyAdminNewPetition, &entity.EffectPayload{
		PetitionID: "p1",
		AdminID:    "admin-1",
	})
	w.processEffect(effect)

	if len(notif.Calls) != 1 || notif.Calls[0] != "admin_new_petition" {
		t.Fatalf("notification calls = %v, want [admin_new_petition]", notif.Calls)
	}
	if len(repo.Processed) != 1 || repo.Processed[0] != "e1" {
		t.Errorf("processed = %v, want [e1]", repo.Processed)
	}
	if len(repo.Rescheduled) != 0 || len(repo.Failed) != 0 {
		t.Error("successful effect was rescheduled or parked")
	}
}

func TestOutboxWorkerProcessesMetricsEffect(t *testing.T) {
	repo := &mockOutboxRepo{}
	metrics := &mockMetricsService{}
	w := newWorkerFixture(repo, &mockNotificationService{}, metrics)

	w.processEffect(effectOf(t, "e1", entity.EffectRecomputeGroupMetrics, &entity.EffectPayload{GroupID: "g1"}))

	if len(metrics.Groups) != 1 || metrics.Groups[0] != "g1" {
		t.Fatalf("metrics groups = %v, want [g1]", metrics.Groups)
	}
	if len(repo.Processed) != 1 {
		t.Errorf("processed = %v, want [e1]", repo.Processed)
	}
}

func TestOutboxWorkerReschedulesWithBackoff(t *testing.T) {
	repo := &mockOutboxRepo{}
	notif := &mockNotificationService{err: errors.New("expo unreachable")}
	w := newWorkerFixture(repo, notif, &mockMetricsService{})

	effect := effectOf(t, "e1", entity.EffectNotifySubstitutionRequest, &entity.EffectPayload{UserID: "u2"})
	effect.Attempts = 1

	before := time.Now()
	w.processEffect(effect)

	if len(repo.Rescheduled) != 1 {
		t.Fatalf("rescheduled = %v, want [e1]", repo.Rescheduled)
	}
	if repo.Attempts["e1"] != 2 {
		t.Errorf("attempts = %d, want 2", repo.Attempts["e1"])
	}
	// Second attempt: base * 2.
	wantDelay := DefaultOutboxWorkerConfig().BaseBackoff * 2
	if got := repo.NextAt["e1"].Sub(before); got < wantDelay {
		t.Errorf("next attempt in %v, want at least %v", got, wantDelay)
	}
	if len(repo.Processed) != 0 || len(repo.Failed) != 0 {
		t.Error("failing effect was processed or parked early")
	}
}

func TestOutboxWorkerParksAfterMaxAttempts(t *testing.T) {
	repo := &mockOutboxRepo{}
	notif := &mockNotificationService{err: errors.New("expo unreachable")}
	w := newWorkerFixture(repo, notif, &mockMetricsService{})

	effect := effectOf(t, "e1", entity.EffectNotifySubstitutionRequest, &entity.EffectPayload{UserID: "u2"})
	effect.Attempts = DefaultOutboxWorkerConfig().MaxAttempts - 1

	w.processEffect(effect)

	if len(repo.Failed) != 1 || repo.Failed[0] != "e1" {
		t.Fatalf("failed = %v, want [e1]", repo.Failed)
	}
	if len(repo.Rescheduled) != 0 {
		t.Error("exhausted effect was rescheduled")
	}
}

func TestOutboxWorkerUnknownEffectType(t *testing.T) {
	repo := &mockOutboxRepo{}
	w := newWorkerFixture(repo, &mockNotificationService{}, &mockMetricsService{})

	effect := effectOf(t, "e1", "telegram_everyone", &entity.EffectPayload{})
	w.processEffect(effect)

	if len(repo.Processed) != 0 {
		t.Error("unknown effect type marked processed")
	}
	if len(repo.Rescheduled) != 1 {
		t.Errorf("unknown effect type should be rescheduled until parked, got %v", repo.Rescheduled)
	}
}

func TestOutboxWorkerDrainsBatch(t *testing.T) {
	effects := []*entity.OutboxEffect{
		effectOf(t, "e1", entity.EffectNotifyPetitionApproved, &entity.EffectPayload{UserID: "u1"}),
		effectOf(t, "e2", entity.EffectRecomputeGroupMetrics, &entity.EffectPayload{GroupID: "g1"}),
	}
	repo := &mockOutboxRepo{
		getDueFunc: func(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error) {
			return effects, nil
		},
	}
	notif := &mockNotificationService{}
	metrics := &mockMetricsService{}
	w := newWorkerFixture(repo, notif, metrics)

	w.drainDue()

	if len(repo.Processed) != 2 {
		t.Fatalf("processed = %v, want both effects", repo.Processed)
	}
	if len(notif.Calls) != 1 || len(metrics.Groups) != 1 {
		t.Errorf("dispatches: notifications=%v metrics=%v", notif.Calls, metrics.Groups)
	}
}

func TestOutboxWorkerStopJoinsPollLoop(t *testing.T) {
	var polls atomic.Int64
	repo := &mockOutboxRepo{
		getDueFunc: func(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEffect, error) {
			polls.Add(1)
			return nil, nil
		},
	}
	config := DefaultOutboxWorkerConfig()
	config.PollInterval = time.Millisecond
	w := NewOutboxWorker(config, repo, &mockNotificationService{}, &mockMetricsService{}, zap.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for polls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("poll loop never ran")
		}
		time.Sleep(time.Millisecond)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Once Stop returns the loop has exited, so no further polls may land.
	after := polls.Load()
	time.Sleep(10 * time.Millisecond)
	if got := polls.Load(); got != after {
		t.Errorf("polls after Stop = %d, want %d", got, after)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
