package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/auth"
	"lunch/backend/internal/commands"
	"lunch/backend/internal/pkg/config"
	"lunch/backend/internal/pkg/localtime"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/router"
)

func main() {
	log := log.New(os.Stdout, "LUNCH : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	if err := run(log); err != nil {
		log.Println("main: error:", err)
		os.Exit(1)
	}
}

func run(log *log.Logger) error {
	if err := godotenv.Load(); err != nil {
		log.Println("main: no .env file, using the process environment")
	}

	cfg, err := config.NewConfig("config.yaml", os.Args[1:])
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := config.Usage()
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	ctx := context.Background()

	zone, err := localtime.Load(cfg.DisplayTimeZone)
	if err != nil {
		return errors.Wrap(err, "loading display time zone")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	postgresDB, err := postgresql.NewDB(dbCtx, postgresql.Config{
		User:       cfg.DB.Username,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Port:       cfg.DB.Port,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
		Debug:      cfg.DB.Debug,
	})
	if err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	defer func() {
		log.Println("main: closing database")
		_ = postgresDB.Close()
	}()

	if err := commands.MigrateUP(ctx, postgresDB); err != nil {
		return err
	}

	var redisDB *redis.Client
	if cfg.RedisEnabled() {
		redisDB = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisDB.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "connecting to redis")
		}
		defer redisDB.Close()
	}

	authorization, err := auth.New(cfg.JWTKey)
	if err != nil {
		return errors.Wrap(err, "constructing auth")
	}

	if !cfg.DB.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	app := web.NewApp(log)
	r := router.NewRouter(app, postgresDB, redisDB, cfg, authorization, zone)

	log.Printf("main: listening on %s (display time zone %s)", cfg.HTTP.Port, zone.Name())
	return r.Init(ctx)
}
