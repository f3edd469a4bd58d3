package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"oakfire-be/internal/config"
	"oakfire-be/internal/db"
	"oakfire-be/internal/logger"
	"oakfire-be/internal/user"
)

// Seeds a back-office admin account. There is no public registration
// surface; this command is the only way accounts get created.
func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password")
	role := flag.String("role", "ADMIN", "account role: ADMIN or STAFF")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required (flags or SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD)")
	}

	r := user.Role(*role)
	if r != user.RoleAdmin && r != user.RoleStaff {
		log.Fatalf("unknown role %q", *role)
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	auth := user.NewAuthenticator(cfg.JWTSecret, 24*time.Hour)
	svc := user.NewService(user.NewRepository(database), auth)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := svc.Register(ctx, *email, *password, r)
	if errors.Is(err, user.ErrEmailExists) {
		log.Printf("account %s already exists, nothing to do", *email)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	log.Printf("seeded %s account %s (id %d)", a.Role, a.Email, a.ID)
}
