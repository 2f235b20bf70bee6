package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/mailer"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]domain.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	client.ID = fmt.Sprintf("client-%d", len(f.clients)+1)
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	f.clients[client.ID] = *client
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client, ok := f.clients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (f *fakeClientRepo) GetByEmail(_ context.Context, email string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, client := range f.clients {
		if client.Email == email {
			c := client
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	clients *fakeClientRepo
	seq     int
}

func newFakeTicketRepo(clients *fakeClientRepo) *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket), clients: clients}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.OwnerID == ownerID {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeTicketRepo) ListAllWithOwner(ctx context.Context) ([]domain.TicketWithOwner, error) {
	f.mu.Lock()
	tickets := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		tickets = append(tickets, ticket)
	}
	f.mu.Unlock()

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})

	result := make([]domain.TicketWithOwner, 0, len(tickets))
	for _, ticket := range tickets {
		entry := domain.TicketWithOwner{Ticket: ticket}
		if owner, err := f.clients.GetByID(ctx, ticket.OwnerID); err == nil {
			entry.OwnerName = owner.Name
			entry.OwnerEmail = owner.Email
			entry.OwnerCompany = owner.Company
		}
		result = append(result, entry)
	}
	return result, nil
}

func (f *fakeTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = *ticket
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
	done chan struct{}
}

func newFakeMailer(fail bool) *fakeMailer {
	return &fakeMailer{fail: fail, done: make(chan struct{}, 16)}
}

func (f *fakeMailer) Send(recipient, subject, htmlBody string) mailer.Outcome {
	f.mu.Lock()
	f.sent = append(f.sent, recipient)
	f.mu.Unlock()
	f.done <- struct{}{}
	if f.fail {
		return mailer.Outcome{Err: "connection refused"}
	}
	return mailer.Outcome{Success: true, MessageID: "<test@localhost>"}
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	clients    *fakeClientRepo
	dispatcher events.Dispatcher
	replied    chan events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clients := newFakeClientRepo()
	tickets := newFakeTicketRepo(clients)
	dispatcher := events.NewInMemoryDispatcher()

	replied := make(chan events.Event, 16)
	dispatcher.Subscribe(events.EventTicketReplied, func(_ context.Context, event events.Event) error {
		replied <- event
		return nil
	})

	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		ClientRepo: clients,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &fixture{service: svc, tickets: tickets, clients: clients, dispatcher: dispatcher, replied: replied}
}

func (f *fixture) newOwner(t *testing.T, email string) *domain.Client {
	t.Helper()
	owner := &domain.Client{Name: "Owner One", Email: email, Company: "Acme"}
	require.NoError(t, f.clients.Create(context.Background(), owner))
	return owner
}

func waitReplied(t *testing.T, ch chan events.Event) events.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ticket_replied event")
		return events.Event{}
	}
}

func assertNoReplied(t *testing.T, ch chan events.Event) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected ticket_replied event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")

	ticket, err := f.service.CreateTicket(context.Background(), owner.ID, "  Help me 123  ", "I need assistance")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.False(t, ticket.HasOperatorReply)
	assert.Nil(t, ticket.OperatorReply)
	assert.Nil(t, ticket.RepliedAt)
	assert.Equal(t, "Help me 123", ticket.Subject)
	assert.Equal(t, owner.ID, ticket.OwnerID)
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.False(t, ticket.UpdatedAt.IsZero())
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")

	cases := []struct {
		name    string
		subject string
		content string
	}{
		{"empty subject", "", "content"},
		{"whitespace subject", "   ", "content"},
		{"empty content", "subject", ""},
		{"whitespace content", "subject", "  \t "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateTicket(context.Background(), owner.ID, tc.subject, tc.content)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", errorutil.ToDomainError(err).Code)
		})
	}
	assert.Empty(t, f.tickets.tickets, "no write may occur on validation failure")
}

func TestReplyDefaultsToResolved(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")
	created, err := f.service.CreateTicket(context.Background(), owner.ID, "Subject", "Content")
	require.NoError(t, err)

	updated, err := f.service.Reply(context.Background(), created.ID, "All fixed.", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.True(t, updated.HasOperatorReply)
	require.NotNil(t, updated.OperatorReply)
	assert.Equal(t, "All fixed.", *updated.OperatorReply)
	require.NotNil(t, updated.RepliedAt)
	assert.False(t, updated.RepliedAt.Before(created.CreatedAt))

	event := waitReplied(t, f.replied)
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	require.True(t, ok)
	assert.Equal(t, "owner@example.com", payload.OwnerEmail)
	assert.Equal(t, "All fixed.", payload.Reply)
}

func TestReplyReopensResolvedTicket(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")
	created, err := f.service.CreateTicket(context.Background(), owner.ID, "Subject", "Content")
	require.NoError(t, err)

	_, err = f.service.Reply(context.Background(), created.ID, "Done.", nil)
	require.NoError(t, err)
	waitReplied(t, f.replied)

	inProgress := domain.TicketStatusInProgress
	updated, err := f.service.Reply(context.Background(), created.ID, "Actually, still looking.", &inProgress)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.True(t, updated.HasOperatorReply, "a reply never clears the reply flag")
	waitReplied(t, f.replied)
}

func TestReplyRejectsInvalidStatus(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")
	created, err := f.service.CreateTicket(context.Background(), owner.ID, "Subject", "Content")
	require.NoError(t, err)

	newStatus := domain.TicketStatusNew
	_, err = f.service.Reply(context.Background(), created.ID, "text", &newStatus)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errorutil.ToDomainError(err).Code)

	stored, err := f.tickets.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, stored.Status)
	assertNoReplied(t, f.replied)
}

func TestReplyNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Reply(context.Background(), "missing-id", "text", nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errorutil.ToDomainError(err).Code)
	assertNoReplied(t, f.replied)
}

func TestReplySkipsNotificationWithoutEmail(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "")
	created, err := f.service.CreateTicket(context.Background(), owner.ID, "Subject", "Content")
	require.NoError(t, err)

	updated, err := f.service.Reply(context.Background(), created.ID, "Reply.", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assertNoReplied(t, f.replied)
}

func TestReplySucceedsWhenDeliveryFails(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")

	failing := newFakeMailer(true)
	notifications := NewNotificationService(f.dispatcher, failing, zap.NewNop())
	notifications.RegisterHandlers()

	created, err := f.service.CreateTicket(context.Background(), owner.ID, "Subject", "Content")
	require.NoError(t, err)

	updated, err := f.service.Reply(context.Background(), created.ID, "Reply despite broken SMTP.", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.OperatorReply)

	select {
	case <-failing.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery attempt")
	}
	assert.Equal(t, 1, failing.sentCount())

	stored, err := f.tickets.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status, "delivery failure must not roll back the mutation")
}

func TestSupportFlow(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")
	ctx := context.Background()

	created, err := f.service.CreateTicket(ctx, owner.ID, "Help me 123", "I need assistance")
	require.NoError(t, err)

	mine, err := f.service.ListForOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.Equal(t, domain.TicketStatusNew, mine[0].Status)

	all, err := f.service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, "Owner One", all[0].OwnerName)
	assert.Equal(t, "owner@example.com", all[0].OwnerEmail)

	inProgress := domain.TicketStatusInProgress
	updated, err := f.service.Reply(ctx, created.ID, "We are looking into it.", &inProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	waitReplied(t, f.replied)

	mine, err = f.service.ListForOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].OperatorReply)
	assert.Equal(t, "We are looking into it.", *mine[0].OperatorReply)
	assert.Equal(t, domain.TicketStatusInProgress, mine[0].Status)
}

func TestListForOwnerNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.newOwner(t, "owner@example.com")
	other := f.newOwner(t, "other@example.com")
	ctx := context.Background()

	first, err := f.service.CreateTicket(ctx, owner.ID, "First", "content")
	require.NoError(t, err)
	second, err := f.service.CreateTicket(ctx, owner.ID, "Second", "content")
	require.NoError(t, err)
	_, err = f.service.CreateTicket(ctx, other.ID, "Not mine", "content")
	require.NoError(t, err)

	mine, err := f.service.ListForOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}
