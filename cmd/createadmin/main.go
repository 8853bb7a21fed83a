// Command createadmin bootstraps an administrator account, since admins cannot self-register.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"marketplace-hub/config"
	db "marketplace-hub/database"
	"marketplace-hub/logger"
	"marketplace-hub/repository"
	"marketplace-hub/services"

	"go.uber.org/zap"
)

type adminFlags struct {
	name     string
	email    string
	password string
	phone    string
}

func parseFlags(args []string) (adminFlags, error) {
	var f adminFlags
	fs := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	fs.StringVar(&f.name, "name", "Administrator", "display name")
	fs.StringVar(&f.email, "email", "", "login email (required)")
	fs.StringVar(&f.password, "password", "", "login password (required)")
	fs.StringVar(&f.phone, "phone", "", "contact phone (required)")
	if err := fs.Parse(args); err != nil {
		return adminFlags{}, err
	}
	if f.email == "" || f.password == "" || f.phone == "" {
		return adminFlags{}, errors.New("-email, -password and -phone are required")
	}
	return f, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal("createadmin: ", err)
	}
}

func run(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Println("Warning: no .env file loaded:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	zl, err := logger.New("marketplace-createadmin", cfg.Env, cfg.LogLevel, "")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.ContextWithLogger(ctx, zl)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Disconnect(client)
	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}

	auth := services.NewAuthService(
		repository.NewMongoUserRepository(database),
		repository.NewMongoVendorRepository(database),
		services.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire),
	)
	res, err := auth.CreateAdmin(ctx, services.RegisterInput{
		Name:     f.name,
		Email:    f.email,
		Password: f.password,
		Phone:    f.phone,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	zl.Info("admin created", zap.String("user_id", res.ID.Hex()), zap.String("email", res.Email))
	return nil
}
