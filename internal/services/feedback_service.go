package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/monitoring"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackService struct {
	feedbackRepo models.FeedbackRepo
	eventRepo    models.EventRepo
	logger       *slog.Logger
	now          func() time.Time
}

func NewFeedbackService(feedbackRepo models.FeedbackRepo, eventRepo models.EventRepo, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		eventRepo:    eventRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// SubmitFeedback stores a rating and folds it into the event's average.
// A user may review the same event more than once.
func (fs *FeedbackService) SubmitFeedback(ctx context.Context, actor models.Actor, eventID primitive.ObjectID, in *models.FeedbackInput) (*models.Feedback, error) {
	if err := CanSubmitFeedback(actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := fs.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	feedback, err := fs.feedbackRepo.CreateFeedback(ctx, in.NewFeedback(eventID, actor.UserID, fs.now()))
	if err != nil {
		return nil, err
	}

	if _, err := fs.eventRepo.AdjustRating(ctx, eventID, feedback.Rating, 1); err != nil {
		// event vanished after the lookup; drop the orphan
		if delErr := fs.feedbackRepo.DeleteFeedback(ctx, feedback.ID); delErr != nil {
			fs.logger.Error("failed to remove orphaned feedback", "feedback_id", feedback.ID.Hex(), "error", delErr)
		}
		return nil, err
	}

	monitoring.TrackFeedback(strconv.Itoa(feedback.Rating))
	fs.logger.Info("feedback submitted", "event_id", eventID.Hex(), "author_id", actor.UserID, "rating", feedback.Rating)
	return feedback, nil
}

func (fs *FeedbackService) ListFeedback(ctx context.Context, actor models.Actor, eventID primitive.ObjectID) ([]*models.Feedback, error) {
	if _, err := fs.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return fs.feedbackRepo.ListFeedbackByEvent(ctx, eventID)
}

func (fs *FeedbackService) Summary(ctx context.Context, actor models.Actor, eventID primitive.ObjectID) (*models.FeedbackSummary, error) {
	if _, err := fs.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return fs.feedbackRepo.FeedbackSummary(ctx, eventID)
}
