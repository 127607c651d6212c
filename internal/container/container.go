package container

import (
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/eventhub/internal/config"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/middleware"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	TokenValidator *helpers.TokenValidator
	RateLimiter    *middleware.RateLimiter

	UserService       *services.UserService
	EventService      *services.EventService
	EnrollmentService *services.EnrollmentService
	FeedbackService   *services.FeedbackService
}

// NewContainer creates a new dependency injection container. cld and
// redisClient are optional.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	cld *cloudinary.Cloudinary,
	redisClient *redis.Client,
	tokenValidator *helpers.TokenValidator,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mongo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	var images helpers.ImageUploader = helpers.PassthroughUploader{}
	if cld != nil {
		images = helpers.NewCloudinaryUploader(cld)
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRateLimiter(redisClient, cfg.RateLimitPerMin, time.Minute, logger)
	}

	return &Container{
		Config:            cfg,
		Logger:            logger,
		SupabaseClient:    supabaseClient,
		MongoDBClient:     mongoDBClient,
		RedisClient:       redisClient,
		TokenValidator:    tokenValidator,
		RateLimiter:       limiter,
		UserService:       services.NewUserService(mongo, supa, images, cfg.AdminEmails, logger),
		EventService:      services.NewEventService(mongo, mongo, images, logger),
		EnrollmentService: services.NewEnrollmentService(mongo, logger),
		FeedbackService:   services.NewFeedbackService(mongo, mongo, logger),
	}
}
