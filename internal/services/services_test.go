package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/internal/common"
	"taskmarket/internal/localstore"
	"taskmarket/internal/logging"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

type fixture struct {
	accounts     AccountService
	tasks        TaskService
	applications ApplicationService
	messages     MessageService
	payments     PaymentService
}

// newFixture wires the services over an in-memory store without a remote;
// every operation must behave identically offline.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	store, err := localstore.Open(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := syncer.New(store, nil, syncer.DefaultConfig(), log)

	accounts := NewAccountService(engine, store)
	tasks := NewTaskService(engine, accounts)
	messages := NewMessageService(engine)
	return &fixture{
		accounts:     accounts,
		tasks:        tasks,
		applications: NewApplicationService(engine, tasks, messages),
		messages:     messages,
		payments:     NewPaymentService(engine, accounts),
	}
}

func (f *fixture) mustAccount(t *testing.T, username string) *models.Account {
	t.Helper()
	account, err := f.accounts.Create(context.Background(), username, "hunter2", "")
	require.NoError(t, err)
	return account
}

// mustTask posts a task, relying on the owner's free permit.
func (f *fixture) mustTask(t *testing.T, ownerID int64, title string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), ownerID, title, "")
	require.NoError(t, err)
	return task
}

func TestAccountCreateAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.accounts.Create(ctx, "alice", "hunter2", "Alice A")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "hunter2", created.PasswordHash)
	assert.False(t, created.FreePermitUsed)
	assert.Zero(t, created.Permits)

	signed, err := f.accounts.SignIn(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, signed.ID)

	current, err := f.accounts.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	require.NoError(t, f.accounts.SignOut(ctx))
	_, err = f.accounts.Current(ctx)
	assert.ErrorIs(t, err, common.ErrNotSignedIn)
}

func TestAccountSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustAccount(t, "alice")

	_, err := f.accounts.SignIn(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = f.accounts.SignIn(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAccountDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustAccount(t, "alice")

	_, err := f.accounts.Create(ctx, "alice", "other", "")
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)
}

func TestPermitAccounting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")

	// First post spends the free permit.
	_, err := f.tasks.Create(ctx, alice.ID, "first task", "")
	require.NoError(t, err)

	account, err := f.accounts.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, account.FreePermitUsed)
	assert.Zero(t, account.Permits)

	// No permits left: posting fails and nothing is created.
	_, err = f.tasks.Create(ctx, alice.ID, "second task", "")
	assert.ErrorIs(t, err, common.ErrNoPermits)
	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	// A recorded payment credits permits and posting works again.
	_, err = f.payments.Record(ctx, alice.ID, "pay_123", 2, 500)
	require.NoError(t, err)

	account, err = f.accounts.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, account.Permits)

	_, err = f.tasks.Create(ctx, alice.ID, "second task", "")
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, alice.ID, "third task", "")
	require.NoError(t, err)

	// Both paid permits spent; the next post fails again.
	account, err = f.accounts.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, account.Permits)

	_, err = f.tasks.Create(ctx, alice.ID, "fourth task", "")
	assert.ErrorIs(t, err, common.ErrNoPermits)
}

func TestPaymentDuplicateReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")

	_, err := f.payments.Record(ctx, alice.ID, "pay_123", 1, 250)
	require.NoError(t, err)

	_, err = f.payments.Record(ctx, alice.ID, "pay_123", 1, 250)
	assert.ErrorIs(t, err, common.ErrValidation)

	payments, err := f.payments.ListForAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestApplyRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")
	bob := f.mustAccount(t, "bob")
	task := f.mustTask(t, alice.ID, "fix the roof")

	_, err := f.applications.Apply(ctx, alice.ID, task.ID, "")
	assert.ErrorIs(t, err, common.ErrValidation, "owner cannot apply to own task")

	app, err := f.applications.Apply(ctx, bob.ID, task.ID, "I have a ladder")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)

	_, err = f.applications.Apply(ctx, bob.ID, task.ID, "again")
	assert.ErrorIs(t, err, common.ErrValidation, "no duplicate pending application")
}

func TestAcceptAssignsAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")
	bob := f.mustAccount(t, "bob")
	task := f.mustTask(t, alice.ID, "fix the roof")

	app, err := f.applications.Apply(ctx, bob.ID, task.ID, "")
	require.NoError(t, err)

	// Only the owner may accept.
	_, err = f.applications.Accept(ctx, bob.ID, app.ID)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	accepted, err := f.applications.Accept(ctx, alice.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusAssigned, got.Status)
	assert.Equal(t, bob.ID, got.AssigneeID)

	// Exactly one notification, referencing the task by title.
	msgs, err := f.messages.ListForAccount(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, alice.ID, msgs[0].SenderID)
	assert.Equal(t, task.ID, msgs[0].TaskID)
	assert.Contains(t, msgs[0].Body, "fix the roof")
	assert.False(t, msgs[0].Read)

	// The task is no longer open, so new applications are rejected.
	carol := f.mustAccount(t, "carol")
	_, err = f.applications.Apply(ctx, carol.ID, task.ID, "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRejectKeepsTaskOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")
	bob := f.mustAccount(t, "bob")
	task := f.mustTask(t, alice.ID, "fix the roof")

	app, err := f.applications.Apply(ctx, bob.ID, task.ID, "")
	require.NoError(t, err)

	rejected, err := f.applications.Reject(ctx, alice.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, got.Status)
	assert.Zero(t, got.AssigneeID)

	msgs, err := f.messages.ListForAccount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// A rejected application cannot be reviewed again.
	_, err = f.applications.Accept(ctx, alice.ID, app.ID)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateStatusOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")
	bob := f.mustAccount(t, "bob")
	task := f.mustTask(t, alice.ID, "fix the roof")

	_, err := f.tasks.UpdateStatus(ctx, bob.ID, task.ID, models.TaskStatusCancelled)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	updated, err := f.tasks.UpdateStatus(ctx, alice.ID, task.ID, models.TaskStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, updated.Status)

	_, err = f.tasks.UpdateStatus(ctx, alice.ID, task.ID, "bogus")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestMarkReadRecipientOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")
	bob := f.mustAccount(t, "bob")

	msg, err := f.messages.Send(ctx, alice.ID, bob.ID, 0, "hello")
	require.NoError(t, err)

	_, err = f.messages.MarkRead(ctx, alice.ID, msg.ID)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	read, err := f.messages.MarkRead(ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	// Idempotent for the recipient.
	again, err := f.messages.MarkRead(ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, again.Read)
}

func TestMessageValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustAccount(t, "alice")

	_, err := f.messages.Send(ctx, alice.ID, alice.ID, 0, "to self")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.messages.Send(ctx, alice.ID, 12345, 0, "   ")
	assert.ErrorIs(t, err, common.ErrValidation)
}
