// Package testsupport provides in-memory implementations of the repository
// and identity interfaces. They apply the same conditional-update rules as the
// Mongo repositories under a single mutex.
package testsupport

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.Mutex
	events   map[primitive.ObjectID]*models.Event
	feedback map[primitive.ObjectID]*models.Feedback
	users    map[uuid.UUID]*models.User

	// AdjustRatingErr, when set, is returned by AdjustRating.
	AdjustRatingErr error
}

var (
	_ models.EventRepo    = (*Store)(nil)
	_ models.FeedbackRepo = (*Store)(nil)
	_ models.UserRepo     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		events:   map[primitive.ObjectID]*models.Event{},
		feedback: map[primitive.ObjectID]*models.Feedback{},
		users:    map[uuid.UUID]*models.User{},
	}
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	c.Reminders = slices.Clone(e.Reminders)
	return &c
}

func (s *Store) notFound(id primitive.ObjectID) error {
	return fmt.Errorf("%w: event %s", models.ErrNotFound, id.Hex())
}

func (s *Store) CreateEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Participants == nil {
		event.Participants = []uuid.UUID{}
	}
	s.events[event.ID] = cloneEvent(event)
	return cloneEvent(event), nil
}

func (s *Store) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, s.notFound(id)
	}
	return cloneEvent(e), nil
}

func (s *Store) ListEvents(_ context.Context, query models.EventQuery) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Event{}
	for _, e := range s.events {
		if query.Matches(e) {
			out = append(out, cloneEvent(e))
		}
	}
	models.SortEvents(out)
	return out, nil
}

func (s *Store) UpdateEvent(_ context.Context, id primitive.ObjectID, in *models.UpdateEventInput) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, s.notFound(id)
	}
	if in.Capacity != nil && *in.Capacity < len(e.Participants) {
		return nil, fmt.Errorf("%w: capacity %d is below the current participant count %d",
			models.ErrValidation, *in.Capacity, len(e.Participants))
	}
	in.Apply(e)
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (s *Store) TransitionStatus(_ context.Context, id primitive.ObjectID, from []models.EventStatus, to models.EventStatus) (*models.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, false, s.notFound(id)
	}
	if !slices.Contains(from, e.Status) {
		if err := models.ExplainRejectedTransition(e, to); err != nil {
			return nil, false, err
		}
		return cloneEvent(e), false, nil
	}
	e.Status = to
	e.UpdatedAt = time.Now()
	return cloneEvent(e), true, nil
}

func (s *Store) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return s.notFound(id)
	}
	delete(s.events, id)
	return nil
}

func (s *Store) AddParticipant(_ context.Context, id primitive.ObjectID, userID uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, s.notFound(id)
	}
	if !e.AcceptsParticipant(userID) {
		return nil, models.ExplainRejectedJoin(e, userID)
	}
	e.Participants = append(e.Participants, userID)
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (s *Store) RemoveParticipant(_ context.Context, id primitive.ObjectID, userID uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, s.notFound(id)
	}
	idx := slices.Index(e.Participants, userID)
	if idx < 0 {
		return nil, models.ErrNotJoined
	}
	e.Participants = slices.Delete(e.Participants, idx, idx+1)
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (s *Store) AdjustRating(_ context.Context, id primitive.ObjectID, ratingDelta, countDelta int) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AdjustRatingErr != nil {
		return nil, s.AdjustRatingErr
	}
	e, ok := s.events[id]
	if !ok {
		return nil, s.notFound(id)
	}
	e.RatingSum += ratingDelta
	e.TotalReviews += countDelta
	e.AverageRating = 0
	if e.TotalReviews > 0 {
		e.AverageRating = float64(e.RatingSum) / float64(e.TotalReviews)
	}
	return cloneEvent(e), nil
}

func (s *Store) CreateFeedback(_ context.Context, feedback *models.Feedback) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	c := *feedback
	s.feedback[c.ID] = &c
	return feedback, nil
}

func (s *Store) DeleteFeedback(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedback[id]; !ok {
		return fmt.Errorf("%w: feedback %s", models.ErrNotFound, id.Hex())
	}
	delete(s.feedback, id)
	return nil
}

func (s *Store) ListFeedbackByEvent(_ context.Context, eventID primitive.ObjectID) ([]*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackFor(eventID), nil
}

// feedbackFor returns eventID's entries, newest first. Callers hold mu.
func (s *Store) feedbackFor(eventID primitive.ObjectID) []*models.Feedback {
	out := []*models.Feedback{}
	for _, f := range s.feedback {
		if f.EventID == eventID {
			c := *f
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Feedback) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Store) DeleteFeedbackByEvent(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, f := range s.feedback {
		if f.EventID == eventID {
			delete(s.feedback, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) FeedbackSummary(_ context.Context, eventID primitive.ObjectID) (*models.FeedbackSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(eventID, s.feedbackFor(eventID)), nil
}

// summarize builds in memory the breakdown the Mongo repository aggregates
// server-side.
func summarize(eventID primitive.ObjectID, entries []*models.Feedback) *models.FeedbackSummary {
	summary := &models.FeedbackSummary{
		EventID:      eventID,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	sum := 0
	for _, f := range entries {
		summary.Distribution[f.Rating]++
		sum += f.Rating
	}
	summary.TotalReviews = len(entries)
	if summary.TotalReviews > 0 {
		summary.AverageRating = float64(sum) / float64(summary.TotalReviews)
	}
	return summary
}

// FeedbackCount is the number of stored feedback entries across all events.
func (s *Store) FeedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback)
}

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == user.ID || u.Email == user.Email {
			return nil, fmt.Errorf("%w: user already exists", models.ErrConflict)
		}
	}
	c := *user
	s.users[c.ID] = &c
	return user, nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, id)
	}
	c := *u
	return &c, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.User) int {
		return strings.Compare(a.Email, b.Email)
	})
	return out, nil
}

func (s *Store) updateUser(id uuid.UUID, apply func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, id)
	}
	apply(u)
	u.UpdatedAt = time.Now()
	c := *u
	return &c, nil
}

func (s *Store) SetRole(_ context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.Role = role })
}

func (s *Store) SetActive(_ context.Context, id uuid.UUID, active bool) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.Active = active })
}

func (s *Store) SetAvatar(_ context.Context, id uuid.UUID, avatarURL string) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) { u.Avatar = avatarURL })
}

// SeedUser stores an active user with role and returns its Actor.
func (s *Store) SeedUser(name string, role models.Role) models.Actor {
	now := time.Now()
	u := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(name) + "@campus.test",
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u.Actor()
}

// Auth is an identity provider issuing HS256 tokens signed with Secret.
type Auth struct {
	Secret string

	mu       sync.Mutex
	accounts map[string]account
	refresh  map[string]uuid.UUID
}

type account struct {
	id       uuid.UUID
	password string
}

var _ models.AuthProvider = (*Auth)(nil)

func NewAuth(secret string) *Auth {
	return &Auth{
		Secret:   secret,
		accounts: map[string]account{},
		refresh:  map[string]uuid.UUID{},
	}
}

func (a *Auth) SignUp(_ context.Context, email, password string) (uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.accounts[email]; exists {
		return uuid.Nil, fmt.Errorf("%w: email already in use", models.ErrConflict)
	}
	id := uuid.New()
	a.accounts[email] = account{id: id, password: password}
	return id, nil
}

func (a *Auth) SignIn(_ context.Context, email, password string) (*models.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[email]
	if !ok || acc.password != password {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}
	return a.issue(acc.id, email)
}

func (a *Auth) Refresh(_ context.Context, refreshToken string) (*models.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.refresh[refreshToken]
	if !ok {
		return nil, fmt.Errorf("%w: token refresh failed", models.ErrUnauthorized)
	}
	delete(a.refresh, refreshToken)
	return a.issue(id, "")
}

// issue mints a session; callers hold mu.
func (a *Auth) issue(id uuid.UUID, email string) (*models.AuthSession, error) {
	token, err := MintToken(a.Secret, id, time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken := uuid.NewString()
	a.refresh[refreshToken] = id
	return &models.AuthSession{
		AccessToken:  token,
		RefreshToken: refreshToken,
		ExpiresIn:    3600,
		UserID:       id,
		Email:        email,
	}, nil
}

// MintToken signs an HS256 access token for subject valid for ttl. A negative
// ttl yields an expired token.
func MintToken(secret string, subject uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := helpers.CustomClaims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Uploader records uploads and returns a deterministic URL.
type Uploader struct {
	mu      sync.Mutex
	Sources []string
	Err     error
}

func (u *Uploader) Upload(_ context.Context, source, folder string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return "", u.Err
	}
	u.Sources = append(u.Sources, source)
	return "https://images.test/" + folder + "/" + fmt.Sprint(len(u.Sources)), nil
}
