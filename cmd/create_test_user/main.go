package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"task_api/internal/db"
	"task_api/internal/repository"
	"task_api/internal/service"
)

// Registers a user (or logs in if the email exists) and prints a session
// token usable as a Bearer header.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	name := flag.String("name", "Test User", "display name")
	email := flag.String("email", "test@example.com", "email")
	password := flag.String("password", "secret123", "password")
	flag.Parse()

	h := db.NewHandle(dsn)
	defer h.Close()

	auth := service.NewAuthService(repository.NewUserRepository(h), service.NewPasswordHasher(service.DefaultBcryptCost), service.NewTokenCodec(secret))
	ctx := context.Background()

	sess, err := auth.Register(ctx, service.RegisterInput{Name: *name, Email: *email, Password: *password})
	switch {
	case err == nil:
		log.Printf("user created id=%s\n", sess.User.ID)
	case errors.Is(err, service.ErrEmailTaken):
		sess, err = auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
		if err != nil {
			log.Fatalf("user exists, login failed: %v", err)
		}
		log.Printf("user already exists id=%s\n", sess.User.ID)
	default:
		log.Fatalf("register failed: %v", err)
	}

	log.Printf("email=%s name=%s created_at=%v\n", sess.User.Email, sess.User.Name, sess.User.CreatedAt)
	log.Printf("token=%s expires_at=%s\n", sess.Token, sess.ExpiresAt)
}
