package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

const EventDateLayout = "2006-01-02"

type Event struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Venue       string `bson:"venue" json:"venue"`
	Date        string `bson:"date" json:"date"` // YYYY-MM-DD
	Time        string `bson:"time,omitempty" json:"time,omitempty"`
	TypeOfEvent string `bson:"type_of_event,omitempty" json:"typeOfEvent,omitempty"`
	Duration    string `bson:"duration,omitempty" json:"duration,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`

	Capacity     int         `bson:"capacity" json:"capacity"`
	Participants []uuid.UUID `bson:"participants" json:"participants"` // join order
	Status       EventStatus `bson:"status" json:"status"`
	CreatedBy    uuid.UUID   `bson:"created_by" json:"createdBy"`
	Reminders    []string    `bson:"reminders" json:"reminders"`

	AverageRating float64 `bson:"average_rating" json:"averageRating"`
	TotalReviews  int     `bson:"total_reviews" json:"totalReviews"`
	RatingSum     int     `bson:"rating_sum" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// RemainingSlots never goes negative while the capacity invariant holds.
func (e *Event) RemainingSlots() int {
	remaining := e.Capacity - len(e.Participants)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.Capacity
}

func (e *Event) HasParticipant(userID uuid.UUID) bool {
	return slices.Contains(e.Participants, userID)
}

// AcceptsParticipant reports whether userID may join e now. JoinFilter must
// select exactly the events for which this holds.
func (e *Event) AcceptsParticipant(userID uuid.UUID) bool {
	return e.Status == EventStatusApproved && !e.HasParticipant(userID) && !e.IsFull()
}

// EventView is the API representation of an event.
type EventView struct {
	*Event
	ParticipantCount int `json:"participantCount"`
	RemainingSlots   int `json:"remainingSlots"`
}

func (e *Event) View() EventView {
	return EventView{
		Event:            e,
		ParticipantCount: len(e.Participants),
		RemainingSlots:   e.RemainingSlots(),
	}
}

func EventViews(events []*Event) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, e.View())
	}
	return views
}

type CreateEventInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Venue       string   `json:"venue" validate:"required"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string   `json:"time"`
	TypeOfEvent string   `json:"typeOfEvent"`
	Duration    string   `json:"duration"`
	Capacity    int      `json:"capacity" validate:"min=1"`
	Reminders   []string `json:"reminders"`
	Image       string   `json:"image"`
}

func (in *CreateEventInput) Sanitize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Venue = strings.TrimSpace(in.Venue)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.TypeOfEvent = strings.TrimSpace(in.TypeOfEvent)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Image = strings.TrimSpace(in.Image)
	in.Reminders = cleanReminders(in.Reminders)
}

func (in *CreateEventInput) Validate() error {
	in.Sanitize()
	return ValidateStruct(in)
}

// NewEvent builds a pending event owned by creator.
func (in *CreateEventInput) NewEvent(creator uuid.UUID, now time.Time) *Event {
	return &Event{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Description:  in.Description,
		Venue:        in.Venue,
		Date:         in.Date,
		Time:         in.Time,
		TypeOfEvent:  in.TypeOfEvent,
		Duration:     in.Duration,
		Image:        in.Image,
		Capacity:     in.Capacity,
		Participants: []uuid.UUID{},
		Status:       EventStatusPending,
		CreatedBy:    creator,
		Reminders:    in.Reminders,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateEventInput is a partial update; nil fields keep their stored value.
type UpdateEventInput struct {
	Title       *string   `json:"title" validate:"omitnil,min=1"`
	Description *string   `json:"description" validate:"omitnil,min=1"`
	Venue       *string   `json:"venue" validate:"omitnil,min=1"`
	Date        *string   `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Time        *string   `json:"time"`
	TypeOfEvent *string   `json:"typeOfEvent"`
	Duration    *string   `json:"duration"`
	Capacity    *int      `json:"capacity" validate:"omitnil,min=1"`
	Reminders   *[]string `json:"reminders"`
	Image       *string   `json:"image"`
}

func (in *UpdateEventInput) Sanitize() {
	for _, s := range []*string{in.Title, in.Description, in.Venue, in.Date, in.Time, in.TypeOfEvent, in.Duration, in.Image} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if in.Reminders != nil {
		cleaned := cleanReminders(*in.Reminders)
		in.Reminders = &cleaned
	}
}

func (in *UpdateEventInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Venue == nil && in.Date == nil &&
		in.Time == nil && in.TypeOfEvent == nil && in.Duration == nil && in.Capacity == nil &&
		in.Reminders == nil && in.Image == nil
}

func (in *UpdateEventInput) Validate() error {
	in.Sanitize()
	if in.IsEmpty() {
		return validationErrorf("no fields to update")
	}
	return ValidateStruct(in)
}

// Apply copies the supplied fields onto e. Status and participants are never touched.
func (in *UpdateEventInput) Apply(e *Event) {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Venue != nil {
		e.Venue = *in.Venue
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Time != nil {
		e.Time = *in.Time
	}
	if in.TypeOfEvent != nil {
		e.TypeOfEvent = *in.TypeOfEvent
	}
	if in.Duration != nil {
		e.Duration = *in.Duration
	}
	if in.Capacity != nil {
		e.Capacity = *in.Capacity
	}
	if in.Reminders != nil {
		e.Reminders = *in.Reminders
	}
	if in.Image != nil {
		e.Image = *in.Image
	}
}

func cleanReminders(reminders []string) []string {
	out := make([]string, 0, len(reminders))
	for _, r := range reminders {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// EventQuery selects events for the named listings. Zero values mean "any".
type EventQuery struct {
	Statuses    []EventStatus
	CreatedBy   uuid.UUID
	Participant uuid.UUID
	// VisibleTo matches approved events plus every event created by this user.
	VisibleTo uuid.UUID
	OnlyOpen  bool
}

// Matches reports whether e satisfies q. The Mongo filter built from the same
// query must select exactly the same events.
func (q EventQuery) Matches(e *Event) bool {
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, e.Status) {
		return false
	}
	if q.CreatedBy != uuid.Nil && e.CreatedBy != q.CreatedBy {
		return false
	}
	if q.Participant != uuid.Nil && !e.HasParticipant(q.Participant) {
		return false
	}
	if q.VisibleTo != uuid.Nil && e.Status != EventStatusApproved && e.CreatedBy != q.VisibleTo {
		return false
	}
	if q.OnlyOpen && e.IsFull() {
		return false
	}
	return true
}

// SortEvents orders by date, then creation time.
func SortEvents(events []*Event) {
	slices.SortStableFunc(events, func(a, b *Event) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
