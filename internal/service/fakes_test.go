package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = "user-" + strconv.Itoa(f.seq)
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.User{}
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeLicenseRepo struct {
	mu   sync.Mutex
	seq  int
	keys map[string]*domain.LicenseKey

	createErrAfter int // fail Create once this many keys exist, 0 disables
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{keys: map[string]*domain.LicenseKey{}}
}

func (f *fakeLicenseRepo) Create(_ context.Context, key *domain.LicenseKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErrAfter > 0 && len(f.keys) >= f.createErrAfter {
		return pgx.ErrTxClosed
	}
	f.seq++
	key.ID = "lic-" + strconv.Itoa(f.seq)
	key.CreatedAt = time.Now()
	copied := *key
	f.keys[key.ID] = &copied
	return nil
}

func (f *fakeLicenseRepo) GetByID(_ context.Context, id string) (*domain.LicenseKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.keys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *key
	return &copied, nil
}

func (f *fakeLicenseRepo) GetByCode(_ context.Context, code string) (*domain.LicenseKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.keys {
		if strings.EqualFold(key.Code, code) {
			copied := *key
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLicenseRepo) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.keys {
		if strings.EqualFold(key.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLicenseRepo) List(_ context.Context, filter repository.LicenseFilter) ([]domain.LicenseKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.LicenseKey{}
	for _, key := range f.keys {
		if filter.Used != nil && key.IsUsed != *filter.Used {
			continue
		}
		if filter.Product != nil && key.Product != *filter.Product {
			continue
		}
		out = append(out, *key)
	}
	return out, nil
}

func (f *fakeLicenseRepo) MarkUsed(_ context.Context, id, userID string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.keys[id]
	if !ok || key.IsUsed {
		return pgx.ErrNoRows
	}
	key.IsUsed = true
	key.UsedBy = &userID
	key.UsedAt = &usedAt
	return nil
}

func (f *fakeLicenseRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.keys, id)
	return nil
}

func (f *fakeLicenseRepo) Stats(_ context.Context) (repository.LicenseStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := repository.LicenseStats{Total: int64(len(f.keys))}
	for _, key := range f.keys {
		if key.IsUsed {
			stats.Used++
		}
	}
	stats.Available = stats.Total - stats.Used
	return stats, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	code    int
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{code: 1000, tickets: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.code++
	ticket.ID = "ticket-" + strconv.Itoa(f.seq)
	ticket.TicketCode = "TSK-" + strconv.Itoa(f.code)
	ticket.UserEmail = strings.ToLower(ticket.UserEmail)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) Touch(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Ticket{}
	for _, ticket := range f.tickets {
		if !matchesFilter(ticket, filter) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func matchesFilter(t *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.UserEmail != nil && !strings.EqualFold(t.UserEmail, *filter.UserEmail) {
		return false
	}
	if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.Unassigned && t.AssignedTo != nil {
		return false
	}
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.Product != nil && t.Product != *filter.Product {
		return false
	}
	if filter.Priority != nil && t.Priority != *filter.Priority {
		return false
	}
	return true
}

func (f *fakeTicketRepo) Stats(_ context.Context, scope repository.TicketFilter) (repository.TicketStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := repository.TicketStats{}
	for _, ticket := range f.tickets {
		if scope.UserEmail != nil && !strings.EqualFold(ticket.UserEmail, *scope.UserEmail) {
			continue
		}
		if scope.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *scope.AssignedTo) {
			continue
		}
		stats.Total++
		switch ticket.Status {
		case domain.TicketStatusToDo:
			stats.ToDo++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusInProgressQA:
			stats.InProgressQA++
		case domain.TicketStatusCompleted:
			stats.Completed++
		case domain.TicketStatusDone:
			stats.Done++
		}
		if ticket.AssignedTo == nil {
			stats.Unassigned++
		}
	}
	return stats, nil
}

func (f *fakeTicketRepo) Workload(_ context.Context, developerID string) (repository.DeveloperWorkload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	load := repository.DeveloperWorkload{}
	for _, ticket := range f.tickets {
		if ticket.AssignedTo == nil || *ticket.AssignedTo != developerID {
			continue
		}
		load.Total++
		switch ticket.Status {
		case domain.TicketStatusInProgress, domain.TicketStatusInProgressQA:
			load.InProgress++
		case domain.TicketStatusCompleted, domain.TicketStatusDone:
			load.Completed++
		}
	}
	return load, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	seq     int
	entries []domain.StatusChange
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *domain.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	entry.ID = "hist-" + strconv.Itoa(f.seq)
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.StatusChange{}
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeReplyRepo struct {
	mu      sync.Mutex
	seq     int
	replies []domain.Reply
}

func newFakeReplyRepo() *fakeReplyRepo {
	return &fakeReplyRepo{}
}

func (f *fakeReplyRepo) Create(_ context.Context, reply *domain.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	reply.ID = "reply-" + strconv.Itoa(f.seq)
	reply.CreatedAt = time.Now()
	f.replies = append(f.replies, *reply)
	return nil
}

func (f *fakeReplyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Reply{}
	for _, reply := range f.replies {
		if reply.TicketID == ticketID {
			out = append(out, reply)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	seq     int
	entries map[string]*domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{entries: map[string]*domain.Notification{}}
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	notification.ID = "notif-" + strconv.Itoa(f.seq)
	notification.UserEmail = strings.ToLower(notification.UserEmail)
	notification.CreatedAt = time.Now()
	copied := *notification
	f.entries[notification.ID] = &copied
	return nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification, ok := f.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *notification
	return &copied, nil
}

func (f *fakeNotificationRepo) ListByEmail(_ context.Context, email string, _ int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Notification{}
	for _, notification := range f.entries {
		if notification.UserEmail == strings.ToLower(email) {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, notification := range f.entries {
		if notification.UserEmail == strings.ToLower(email) && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification, ok := f.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	notification.IsRead = true
	copied := *notification
	return &copied, nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, notification := range f.entries {
		if notification.UserEmail == strings.ToLower(email) {
			notification.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteOwned(_ context.Context, id, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification, ok := f.entries[id]
	if !ok || notification.UserEmail != strings.ToLower(email) {
		return pgx.ErrNoRows
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeNotificationRepo) DeleteAllForEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, notification := range f.entries {
		if notification.UserEmail == strings.ToLower(email) {
			delete(f.entries, id)
		}
	}
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeMailer) Send(to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, to+": "+subject)
	return nil
}
