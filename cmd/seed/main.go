package main

import (
	"context"
	"flag"
	"net"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittracker/internal/config"
	"github.com/2beens/fittracker/internal/db"
	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/seed"
	"github.com/2beens/fittracker/internal/fitness/users"
	"github.com/2beens/fittracker/internal/logging"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file with secrets")
	usersCount := flag.Int("users", 5, "number of fake users")
	days := flag.Int("days", 28, "days of history per user")
	perDay := flag.Int("per-day", 2, "max entries per user and active day")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "faker seed")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Debugf("no env file loaded from [%s]: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogLevel: cfg.LogLevel,
	})

	ctx := context.Background()

	var (
		userAdder     seed.UserAdder
		recordCreator seed.RecordCreator
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		mongoClient, err := db.NewMongoClient(ctx, os.Getenv("FITTRACKER_MONGO_URI"))
		if err != nil {
			log.Fatalf("mongo client: %s", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Errorf("disconnect mongo: %s", err)
			}
		}()
		mongoDB := mongoClient.Database(cfg.MongoDatabase)
		recordsRepo := records.NewMongoRepo(mongoDB)
		if err := recordsRepo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("ensure indexes: %s", err)
		}
		userAdder = users.NewMongoRepo(mongoDB)
		recordCreator = recordsRepo
	default:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost: cfg.PostgresHost,
			DBPort: cfg.PostgresPort,
			DBName: cfg.PostgresDBName,
		})
		if err != nil {
			log.Fatalf("db pool: %s", err)
		}
		defer dbPool.Close()
		if err := db.EnsureSchema(ctx, dbPool); err != nil {
			log.Fatalf("%s", err)
		}
		userAdder = users.NewRepo(dbPool)
		recordCreator = records.NewRepo(dbPool)
	}

	data := seed.Generate(gofakeit.New(*randSeed), seed.Params{
		Users:         *usersCount,
		Days:          *days,
		EntriesPerDay: *perDay,
	}, time.Now())

	created, err := seed.Store(ctx, userAdder, recordCreator, data)
	if err != nil {
		log.Errorf("seed: %s", err)
	}
	log.Infof("seeded %d users and %d entries (seed %d)", len(data.Users), created, *randSeed)
	for _, u := range data.Users {
		log.Infof("  %s  %s", u.ID, u.Name)
	}

	// the service caches the roster in redis, drop it so new users show up
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("FITTRACKER_REDIS_PASS"),
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}()
	if err := users.NewCachedRoster(nil, rdb, 0).Invalidate(ctx); err != nil {
		log.Warnf("invalidate cached roster: %s", err)
	}
}
