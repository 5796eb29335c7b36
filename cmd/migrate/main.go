package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"task_api/internal/db"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "status"
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Migrate(ctx, dsn, command); err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
	log.Printf("migrate %s: done", command)
}
