package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/events"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type ticketFixture struct {
	svc        *TicketService
	tickets    *fakeTicketRepo
	history    *fakeHistoryRepo
	users      *fakeUserRepo
	dispatcher *recordingDispatcher
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		tickets:    newFakeTicketRepo(),
		history:    newFakeHistoryRepo(),
		users:      newFakeUserRepo(),
		dispatcher: &recordingDispatcher{},
	}
	f.svc = NewTicketService(TicketServiceDeps{
		Tickets:    f.tickets,
		History:    f.history,
		Replies:    newFakeReplyRepo(),
		Users:      f.users,
		Dispatcher: f.dispatcher,
		Logger:     zap.NewNop(),
	})
	return f
}

func (f *ticketFixture) seedUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *ticketFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.Create(context.Background(), CreateTicketInput{
		UserName:    "Dana",
		UserEmail:   "dana@example.com",
		Product:     domain.ProductRxScan,
		Subject:     "Scanner frozen",
		Description: "The scanner hangs on startup.",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newTicketFixture()
	ticket := f.createTicket(t)

	assert.Equal(t, domain.TicketStatusToDo, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.NotEmpty(t, ticket.TicketCode)

	history, err := f.history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TicketStatusToDo, history[0].Status)

	created := f.dispatcher.byType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.ID, created[0].Ticket.ID)
}

func TestCreateTicketRejectsLicenseOnlyProduct(t *testing.T) {
	f := newTicketFixture()
	_, err := f.svc.Create(context.Background(), CreateTicketInput{
		UserName:    "Dana",
		UserEmail:   "dana@example.com",
		Product:     domain.ProductAll,
		Subject:     "x",
		Description: "y",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAssignAutoTransition(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	dev := f.seedUser(t, "Sam", "sam@example.com", domain.RoleDeveloper)
	ticket := f.createTicket(t)

	updated, err := f.svc.Assign(context.Background(), admin, ticket.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, dev.ID, *updated.AssignedTo)

	// The auto-transition is attributed to the assigning admin.
	history, err := f.history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].ChangedBy)
	assert.Equal(t, admin.ID, *history[1].ChangedBy)
	assert.Equal(t, domain.TicketStatusInProgress, history[1].Status)

	assert.Len(t, f.dispatcher.byType(events.EventTicketAssigned), 1)
	assert.Len(t, f.dispatcher.byType(events.EventStatusChanged), 1)
}

func TestAssignNonToDoKeepsStatus(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	dev := f.seedUser(t, "Sam", "sam@example.com", domain.RoleDeveloper)
	ticket := f.createTicket(t)

	_, err := f.svc.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusCompleted)
	require.NoError(t, err)

	updated, err := f.svc.Assign(context.Background(), admin, ticket.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, updated.Status)
	assert.Len(t, f.dispatcher.byType(events.EventTicketAssigned), 1)
}

func TestAssignRejectsNonDeveloper(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	other := f.seedUser(t, "Pat", "pat@example.com", domain.RoleUser)
	ticket := f.createTicket(t)

	_, err := f.svc.Assign(context.Background(), admin, ticket.ID, other.ID)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Invalid developer ID", domainErr.Message)
}

func TestUnassignRevertsInProgress(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	dev := f.seedUser(t, "Sam", "sam@example.com", domain.RoleDeveloper)
	ticket := f.createTicket(t)

	_, err := f.svc.Assign(context.Background(), admin, ticket.ID, dev.ID)
	require.NoError(t, err)
	publishedBefore := len(f.dispatcher.byType(events.EventStatusChanged))

	updated, err := f.svc.Unassign(context.Background(), admin, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedTo)
	assert.Equal(t, domain.TicketStatusToDo, updated.Status)

	// Unassignment is silent: no status change event goes out even
	// though the status reverted, and the history still records it.
	assert.Len(t, f.dispatcher.byType(events.EventStatusChanged), publishedBefore)
	history, err := f.history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusToDo, history[len(history)-1].Status)
}

func TestDeveloperCannotTouchOthersTickets(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	dev := f.seedUser(t, "Sam", "sam@example.com", domain.RoleDeveloper)
	outsider := f.seedUser(t, "Kim", "kim@example.com", domain.RoleDeveloper)
	ticket := f.createTicket(t)

	_, err := f.svc.Assign(context.Background(), admin, ticket.ID, dev.ID)
	require.NoError(t, err)
	historyBefore, _ := f.history.ListByTicket(context.Background(), ticket.ID)

	_, err = f.svc.UpdateStatus(context.Background(), outsider, ticket.ID, domain.TicketStatusDone)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// A refused transition leaves no history entry behind.
	historyAfter, _ := f.history.ListByTicket(context.Background(), ticket.ID)
	assert.Len(t, historyAfter, len(historyBefore))

	_, err = f.svc.UpdateStatus(context.Background(), dev, ticket.ID, domain.TicketStatusInProgressQA)
	require.NoError(t, err)
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	ticket := f.createTicket(t)

	_, err := f.svc.UpdateStatus(context.Background(), admin, ticket.ID, "Archived")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	// Any known state can reach any other, including moving backwards.
	_, err = f.svc.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusDone)
	require.NoError(t, err)
	updated, err := f.svc.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusToDo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusToDo, updated.Status)
}

func TestSameStatusSetStillNotifies(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	ticket := f.createTicket(t)

	updated, err := f.svc.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusToDo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusToDo, updated.Status)

	// History and fan-out stay in lockstep: a same-status set appends
	// an entry and notifies like any other change.
	history, err := f.history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	published := f.dispatcher.byType(events.EventStatusChanged)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.StatusChangedPayload)
	assert.Equal(t, domain.TicketStatusToDo, payload.OldStatus)
	assert.Equal(t, domain.TicketStatusToDo, payload.NewStatus)
}

func TestListScopesByRole(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	dev := f.seedUser(t, "Sam", "sam@example.com", domain.RoleDeveloper)
	customer := f.seedUser(t, "Dana", "dana@example.com", domain.RoleUser)

	mine := f.createTicket(t)
	_, err := f.svc.Create(context.Background(), CreateTicketInput{
		UserName:    "Pat",
		UserEmail:   "pat@example.com",
		Product:     domain.ProductLegalyze,
		Subject:     "Export fails",
		Description: "PDF export errors out.",
	})
	require.NoError(t, err)
	_, err = f.svc.Assign(context.Background(), admin, mine.ID, dev.ID)
	require.NoError(t, err)

	adminList, err := f.svc.ListForActor(context.Background(), admin, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, adminList.Tickets, 2)
	assert.Equal(t, int64(2), adminList.Stats.Total)
	assert.Equal(t, int64(1), adminList.Stats.Unassigned)

	devList, err := f.svc.ListForActor(context.Background(), dev, ListOptions{})
	require.NoError(t, err)
	require.Len(t, devList.Tickets, 1)
	assert.Equal(t, mine.ID, devList.Tickets[0].ID)
	assert.Equal(t, int64(1), devList.Stats.Total)

	userList, err := f.svc.ListForActor(context.Background(), customer, ListOptions{})
	require.NoError(t, err)
	require.Len(t, userList.Tickets, 1)
	assert.Equal(t, "dana@example.com", userList.Tickets[0].UserEmail)
}

func TestStatsIgnoreUserFilters(t *testing.T) {
	f := newTicketFixture()
	admin := f.seedUser(t, "Root", "root@example.com", domain.RoleAdmin)
	f.createTicket(t)
	_, err := f.svc.Create(context.Background(), CreateTicketInput{
		UserName:    "Pat",
		UserEmail:   "pat@example.com",
		Product:     domain.ProductLegalyze,
		Subject:     "Export fails",
		Description: "PDF export errors out.",
		Priority:    domain.TicketPriorityCritical,
	})
	require.NoError(t, err)

	critical := domain.TicketPriorityCritical
	list, err := f.svc.ListForActor(context.Background(), admin, ListOptions{Priority: &critical})
	require.NoError(t, err)
	assert.Len(t, list.Tickets, 1)
	// Counters still describe the full scope.
	assert.Equal(t, int64(2), list.Stats.Total)
}
