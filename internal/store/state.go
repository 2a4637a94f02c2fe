package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

// State is the full object graph: users, cards, applications, the admin
// inbox, and the admin notification pool. Slices keep insertion order;
// index maps make identity and PAN lookups O(1) and are rebuilt on load.
type State struct {
	Users              []*domain.User          `json:"users"`
	Cards              []*domain.Card          `json:"cards"`
	Applications       []*domain.Application   `json:"applications"`
	AdminInbox         []*domain.InboxEntry    `json:"admin_inbox"`
	AdminNotifications []*domain.Notification  `json:"admin_notifications"`

	usersByID   map[string]*domain.User
	usersByMail map[string]*domain.User
	cardsByID   map[string]*domain.Card
	cardsByPAN  map[string]*domain.Card
	cardsByUser map[string][]*domain.Card
	appsByID    map[string]*domain.Application
	inboxByUser map[string]*domain.InboxEntry
}

func newState() *State {
	s := &State{}
	s.reindex()
	return s
}

func (s *State) reindex() {
	s.usersByID = make(map[string]*domain.User, len(s.Users))
	s.usersByMail = make(map[string]*domain.User, len(s.Users))
	for _, u := range s.Users {
		s.usersByID[u.ID] = u
		s.usersByMail[u.Email] = u
	}
	s.cardsByID = make(map[string]*domain.Card, len(s.Cards))
	s.cardsByPAN = make(map[string]*domain.Card, len(s.Cards))
	s.cardsByUser = make(map[string][]*domain.Card)
	for _, c := range s.Cards {
		s.cardsByID[c.ID] = c
		s.cardsByPAN[c.PAN] = c
		s.cardsByUser[c.UserID] = append(s.cardsByUser[c.UserID], c)
	}
	s.appsByID = make(map[string]*domain.Application, len(s.Applications))
	for _, a := range s.Applications {
		s.appsByID[a.ID] = a
	}
	s.inboxByUser = make(map[string]*domain.InboxEntry, len(s.AdminInbox))
	for _, e := range s.AdminInbox {
		s.inboxByUser[e.UserID] = e
	}
}

// UserByID resolves a user by identity.
func (s *State) UserByID(id string) (*domain.User, bool) {
	u, ok := s.usersByID[id]
	return u, ok
}

// UserByEmail resolves a user by email.
func (s *State) UserByEmail(email string) (*domain.User, bool) {
	u, ok := s.usersByMail[email]
	return u, ok
}

// CardByID resolves a card by identity.
func (s *State) CardByID(id string) (*domain.Card, bool) {
	c, ok := s.cardsByID[id]
	return c, ok
}

// CardByPAN resolves a card by its 16-digit number.
func (s *State) CardByPAN(pan string) (*domain.Card, bool) {
	c, ok := s.cardsByPAN[pan]
	return c, ok
}

// CardsOwnedBy returns a user's cards in registration order.
func (s *State) CardsOwnedBy(userID string) []*domain.Card {
	return s.cardsByUser[userID]
}

// ApplicationByID resolves an application by identity.
func (s *State) ApplicationByID(id string) (*domain.Application, bool) {
	a, ok := s.appsByID[id]
	return a, ok
}

// PendingApplicationFor returns the user's pending application, if any.
func (s *State) PendingApplicationFor(userID string) (*domain.Application, bool) {
	for _, a := range s.Applications {
		if a.UserID == userID && a.Status == domain.ApplicationStatusPending {
			return a, true
		}
	}
	return nil, false
}

// InboxEntryFor returns the admin inbox entry for a user, if any.
func (s *State) InboxEntryFor(userID string) (*domain.InboxEntry, bool) {
	e, ok := s.inboxByUser[userID]
	return e, ok
}

// AddUser inserts a user and maintains the identity and email indexes.
func (s *State) AddUser(u *domain.User) {
	s.Users = append(s.Users, u)
	s.usersByID[u.ID] = u
	s.usersByMail[u.Email] = u
}

// AddCard inserts a card and maintains the identity, PAN, and owner
// indexes.
func (s *State) AddCard(c *domain.Card) {
	s.Cards = append(s.Cards, c)
	s.cardsByID[c.ID] = c
	s.cardsByPAN[c.PAN] = c
	s.cardsByUser[c.UserID] = append(s.cardsByUser[c.UserID], c)
}

// AddApplication inserts an application.
func (s *State) AddApplication(a *domain.Application) {
	s.Applications = append(s.Applications, a)
	s.appsByID[a.ID] = a
}

// NotifyUser appends an unread notification to the user's pool.
func (s *State) NotifyUser(u *domain.User, title, body string, now time.Time) {
	u.Notifications = append(u.Notifications, domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
	})
}

// NotifyAdmin appends an unread notification to the admin-wide pool.
func (s *State) NotifyAdmin(title, body string, now time.Time) {
	s.AdminNotifications = append(s.AdminNotifications, &domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
	})
}

// UpsertInboxEntry records a user-authored message in the admin inbox:
// update-in-place when the user already has an entry, insert otherwise.
func (s *State) UpsertInboxEntry(u *domain.User, lastMessage string, now time.Time) {
	if e, ok := s.inboxByUser[u.ID]; ok {
		e.LastMessage = lastMessage
		e.Unread = true
		e.UpdatedAt = now
		return
	}
	entry := &domain.InboxEntry{
		UserID:      u.ID,
		UserName:    u.Name,
		UserEmail:   u.Email,
		LastMessage: lastMessage,
		Unread:      true,
		UpdatedAt:   now,
	}
	s.AdminInbox = append(s.AdminInbox, entry)
	s.inboxByUser[u.ID] = entry
}
