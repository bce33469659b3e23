package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
	authrepo "minimalist-backend/internal/auth/repository"
	"minimalist-backend/internal/testutil"
	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/repository"
	"minimalist-backend/pkg/fcm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sentMessage struct {
	tokens []string
	data   fcm.NotificationData
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMessage
	reject map[string]bool
	err    error
}

func (f *fakeNotifier) SendToDevices(_ context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{tokens: tokens, data: n})
	var failed []string
	for _, token := range tokens {
		if f.reject[token] {
			failed = append(failed, token)
		}
	}
	return failed, nil
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fixture struct {
	db        *gorm.DB
	todoRepo  repository.TodoRepository
	fcmRepo   authrepo.FCMTokenRepository
	userRepo  authrepo.UserRepository
	shareRepo authrepo.ShareCodeRepository
	notifier  *fakeNotifier
	sched     *Scheduler
	now       time.Time
}

func newFixture(t *testing.T, withNotifier bool) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:        db,
		todoRepo:  repository.NewGormTodoRepository(db),
		fcmRepo:   authrepo.NewFCMTokenRepository(db),
		userRepo:  authrepo.NewUserRepository(db),
		shareRepo: authrepo.NewShareCodeRepository(db),
		notifier:  &fakeNotifier{reject: map[string]bool{}},
		now:       time.Now().UTC(),
	}

	var notifier Notifier
	if withNotifier {
		notifier = f.notifier
	}
	f.sched = New(f.todoRepo, f.fcmRepo, f.userRepo, f.shareRepo, notifier, Options{
		Interval:    10 * time.Millisecond,
		Lead:        time.Hour,
		ClickAction: "http://localhost:5173/",
	}, zaptest.NewLogger(t))
	f.sched.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) todo(t *testing.T, userID, title string, due time.Time) *domain.Todo {
	t.Helper()
	todo := &domain.Todo{UserID: userID, Title: title, Priority: domain.PriorityHigh, DueDate: &due}
	require.NoError(t, f.todoRepo.Create(context.Background(), todo))
	return todo
}

func (f *fixture) reminderSent(t *testing.T, todo *domain.Todo) bool {
	t.Helper()
	stored, err := f.todoRepo.FindByID(context.Background(), todo.UserID, todo.ID)
	require.NoError(t, err)
	return stored.ReminderSent
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	user := testutil.CreateUser(t, f.db, "owner@example.com")
	lonely := testutil.CreateUser(t, f.db, "nodevices@example.com")
	require.NoError(t, f.fcmRepo.SaveToken(ctx, user.ID, "good-token", "phone"))
	require.NoError(t, f.fcmRepo.SaveToken(ctx, user.ID, "stale-token", "old tablet"))
	f.notifier.reject["stale-token"] = true

	due := f.todo(t, user.ID, "Pay rent", f.now.Add(30*time.Minute))
	later := f.todo(t, user.ID, "Later", f.now.Add(3*time.Hour))
	noDevices := f.todo(t, lonely.ID, "Nobody listens", f.now.Add(10*time.Minute))

	require.NoError(t, f.sched.SendReminders(ctx))

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.ElementsMatch(t, []string{"good-token", "stale-token"}, msgs[0].tokens)
	assert.Equal(t, "Reminder: Pay rent", msgs[0].data.Title)
	assert.Equal(t, due.ID, msgs[0].data.Data["todo_id"])
	assert.Equal(t, "todo_reminder", msgs[0].data.Data["type"])
	assert.Equal(t, "http://localhost:5173/", msgs[0].data.ClickAction)

	assert.True(t, f.reminderSent(t, due))
	assert.True(t, f.reminderSent(t, noDevices))
	assert.False(t, f.reminderSent(t, later))

	tokens, err := f.fcmRepo.GetTokensByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "good-token", tokens[0].Token)

	// Already reminded todos are not sent again
	require.NoError(t, f.sched.SendReminders(ctx))
	assert.Len(t, f.notifier.messages(), 1)
}

func TestSendRemindersMarksSentOnDeliveryError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.notifier.err = errors.New("fcm unavailable")

	user := testutil.CreateUser(t, f.db, "owner@example.com")
	require.NoError(t, f.fcmRepo.SaveToken(ctx, user.ID, "token", ""))
	todo := f.todo(t, user.ID, "Dentist", f.now.Add(5*time.Minute))

	require.NoError(t, f.sched.SendReminders(ctx))
	assert.True(t, f.reminderSent(t, todo))
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := testutil.CreateUser(t, f.db, "owner@example.com")

	fresh := &authdomain.ShareCode{UserID: user.ID, SecretHash: "x", ExpiresAt: f.now.Add(time.Minute)}
	expired := &authdomain.ShareCode{UserID: user.ID, SecretHash: "x", ExpiresAt: f.now.Add(-time.Minute)}
	usedAt := f.now.Add(-time.Second)
	used := &authdomain.ShareCode{UserID: user.ID, SecretHash: "x", ExpiresAt: f.now.Add(time.Minute), UsedAt: &usedAt}
	for _, code := range []*authdomain.ShareCode{fresh, expired, used} {
		require.NoError(t, f.shareRepo.Create(ctx, code))
	}

	require.NoError(t, f.userRepo.SaveRefreshToken(ctx, &authdomain.RefreshToken{Token: "live", UserID: user.ID, ExpiresAt: f.now.Add(time.Hour)}))
	require.NoError(t, f.userRepo.SaveRefreshToken(ctx, &authdomain.RefreshToken{Token: "dead", UserID: user.ID, ExpiresAt: f.now.Add(-time.Hour)}))

	require.NoError(t, f.sched.Cleanup(ctx))

	found, err := f.shareRepo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)
	for _, gone := range []*authdomain.ShareCode{expired, used} {
		found, err := f.shareRepo.FindByID(ctx, gone.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	}

	live, err := f.userRepo.FindRefreshToken(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, live)
	dead, err := f.userRepo.FindRefreshToken(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, dead)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.sched.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestReminderNotification(t *testing.T) {
	due := time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)
	n := reminderNotification(&domain.Todo{ID: "t1", Title: "Ship it", Priority: domain.PriorityLow, DueDate: &due}, "")
	assert.Equal(t, "Reminder: Ship it", n.Title)
	assert.Equal(t, "This todo is due soon\nDue May 1, 09:30 UTC", n.Body)
	assert.Equal(t, "low", n.Data["priority"])
}
