package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/barbershop-concierge/cmd/mainconfig"
	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	appconfig "github.com/wolfman30/barbershop-concierge/internal/config"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

// AppointmentClients holds the storage clients the selected backend needs.
// Unused clients stay nil.
type AppointmentClients struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
	DynamoDB *dynamodb.Client
}

// Close releases whatever clients were opened.
func (c AppointmentClients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}

// BuildAppointmentClients opens only the client APPOINTMENT_STORE asks for.
func BuildAppointmentClients(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) AppointmentClients {
	if logger == nil {
		logger = logging.Default()
	}
	var clients AppointmentClients
	switch cfg.AppointmentStore {
	case appconfig.StoreRedis:
		clients.Redis = BuildRedisClient(ctx, cfg, logger, true)
	case appconfig.StorePostgres:
		clients.Postgres = BuildPostgresPool(ctx, cfg, logger)
	case appconfig.StoreDynamoDB:
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load AWS config", "error", err)
			break
		}
		clients.DynamoDB = mainconfig.NewDynamoDBClient(awsCfg, cfg)
	}
	return clients
}

// BuildAppointmentRepository picks the configured backend and falls back to
// memory when its client is missing.
func BuildAppointmentRepository(cfg *appconfig.Config, clients AppointmentClients, logger *logging.Logger) appointments.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	store := cfg.AppointmentStore

	var repo appointments.Repository
	switch store {
	case appconfig.StoreRedis:
		if clients.Redis != nil {
			repo = appointments.NewRedisRepository(clients.Redis, cfg.RedisAppointmentsKey)
		}
	case appconfig.StorePostgres:
		if clients.Postgres != nil {
			repo = appointments.NewPostgresRepository(clients.Postgres)
		}
	case appconfig.StoreDynamoDB:
		if clients.DynamoDB != nil {
			repo = appointments.NewDynamoRepository(clients.DynamoDB, cfg.AppointmentsTable)
		}
	case appconfig.StoreMemory, "":
		store = appconfig.StoreMemory
		repo = appointments.NewInMemoryRepository()
	default:
		logger.Warn("unknown appointment store", "store", store)
	}

	if repo == nil {
		logger.Warn("appointment store unavailable, using memory", "store", store)
		return appointments.NewInMemoryRepository()
	}
	logger.Info("appointment store ready", "store", store)
	return repo
}

// WithEventPublishing wraps repo with Kafka publishing when brokers are
// configured. The returned close func is always safe to call.
func WithEventPublishing(repo appointments.Repository, cfg *appconfig.Config, logger *logging.Logger) (appointments.Repository, func() error) {
	writer := appointments.NewKafkaWriter(cfg.KafkaBrokers)
	if writer == nil {
		return repo, func() error { return nil }
	}
	published := appointments.NewPublishingRepository(repo, writer, cfg.KafkaAppointmentsTopic, logger)
	if logger != nil {
		logger.Info("appointment events enabled", "topic", cfg.KafkaAppointmentsTopic)
	}
	return published, published.Close
}
