package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/models"
)

// In-memory fakes for the repository and collaborator interfaces. Mutating
// methods copy nothing; tests own the stored pointers.

var updatedOneTag = pgconn.CommandTag("UPDATE 1")

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: map[uuid.UUID]*models.Property{}}
}

func (r *fakePropertyRepo) Create(ctx context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.properties[id], nil
}

func (r *fakePropertyRepo) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) ListByStatus(ctx context.Context, status models.PropertyStatus) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) ListPublic(ctx context.Context) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.IsPubliclyVisible() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[p.ID] = p
	return updatedOneTag, nil
}

func (r *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return pgx.ErrNoRows
	}
	return mutate(p)
}

// contendingPropertyRepo lands a competing committed write right before the
// locking loop hands the row to the caller's closure, like a second admin
// whose update won the race.
type contendingPropertyRepo struct {
	*fakePropertyRepo
	once    sync.Once
	compete func(*models.Property)
}

func (r *contendingPropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.fakePropertyRepo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
		r.once.Do(func() { r.compete(p) })
		return mutate(p)
	})
}

type fakeProgressRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.PropertyProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[uuid.UUID]*models.PropertyProgress{}}
}

func (r *fakeProgressRepo) Create(ctx context.Context, p *models.PropertyProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.PropertyID] = p
	return nil
}

func (r *fakeProgressRepo) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.PropertyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[propertyID], nil
}

func (r *fakeProgressRepo) UpdateIfVersion(ctx context.Context, p *models.PropertyProgress, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.PropertyID] = p
	return updatedOneTag, nil
}

func (r *fakeProgressRepo) UpdateWithRetry(ctx context.Context, propertyID uuid.UUID, mutate func(*models.PropertyProgress) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[propertyID]
	if !ok {
		return pgx.ErrNoRows
	}
	return mutate(p)
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*models.Transaction
	updates      map[uuid.UUID][]models.Update
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		transactions: map[uuid.UUID]*models.Transaction{},
		updates:      map[uuid.UUID][]models.Update{},
	}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = t
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transactions[id], nil
}

func (r *fakeTransactionRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.transactions {
		if t.PropertyID == propertyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListByStage(ctx context.Context, stage models.TransactionStage) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.transactions {
		if t.Stage == stage {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateIfVersion(ctx context.Context, t *models.Transaction, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = t
	return updatedOneTag, nil
}

func (r *fakeTransactionRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Transaction) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	return mutate(t)
}

func (r *fakeTransactionRepo) AppendUpdate(ctx context.Context, u *models.Update, transactionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[transactionID] = append(r.updates[transactionID], *u)
	return nil
}

func (r *fakeTransactionRepo) ListUpdates(ctx context.Context, transactionID uuid.UUID) ([]models.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[transactionID], nil
}

type fakeTicketRepo struct {
	mu       sync.Mutex
	tickets  map[uuid.UUID]*models.SupportTicket
	messages map[uuid.UUID][]models.TicketMessage
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:  map[uuid.UUID]*models.SupportTicket{},
		messages: map[uuid.UUID][]models.TicketMessage{},
	}
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *models.SupportTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ID] = t
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets[id], nil
}

func (r *fakeTicketRepo) GetWithMessages(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	t.Messages = r.messages[id]
	return t, nil
}

func (r *fakeTicketRepo) ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SupportTicket
	for _, t := range r.tickets {
		if t.CreatorID == creatorID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SupportTicket
	for _, t := range r.tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateIfVersion(ctx context.Context, t *models.SupportTicket, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ID] = t
	return updatedOneTag, nil
}

func (r *fakeTicketRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.SupportTicket) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	return mutate(t)
}

func (r *fakeTicketRepo) AppendMessage(ctx context.Context, m *models.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.TicketID] = append(r.messages[m.TicketID], *m)
	return nil
}

func (r *fakeTicketRepo) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]models.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[ticketID], nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AdminAuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, logEntry *models.AdminAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*models.Property
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.Property{}}
}

func (c *fakeCache) GetListing(ctx context.Context, id string) (*models.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id], nil
}

func (c *fakeCache) SetListing(ctx context.Context, p *models.Property) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.ID.String()] = p
	return nil
}

func (c *fakeCache) DeleteListing(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deletes = append(c.deletes, id)
	return nil
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{subject: subject, data: data})
	return nil
}

type fakeUploader struct {
	url string
	err error
}

func (u *fakeUploader) Upload(ctx context.Context, originalFileName string, data []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	stageEmails   []models.TransactionStage
	urgentTickets []uuid.UUID
	digests       []int
	err           error
}

func (n *fakeNotifier) NotifyStageChange(ctx context.Context, sellerEmail, sellerName, propertyTitle, propertyID string, stage models.TransactionStage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.stageEmails = append(n.stageEmails, stage)
	return nil
}

func (n *fakeNotifier) NotifyUrgentTicket(ctx context.Context, ticket *models.SupportTicket) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.urgentTickets = append(n.urgentTickets, ticket.ID)
	return nil
}

func (n *fakeNotifier) SendModerationDigest(ctx context.Context, adminEmails []string, pendingCount int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.digests = append(n.digests, pendingCount)
	return nil
}

var errBoom = errors.New("boom")
