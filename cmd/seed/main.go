// seed inserts a demo user and a few content records into the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/writing-assistant/internal/auth"
	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedName     = "Ann"
	seedEmail    = "ann@seed.local"
	seedPassword = "secret"
)

var drafts = []struct{ title, body string }{
	{"Welcome", "This is your first draft. Edit or delete it from the dashboard."},
	{"Ideas", "- Go generics in practice\n- Writing for engineers\n- Release notes that people read"},
	{"Empty draft", ""},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := postgres.Migrate(ctx, dbURL, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL, postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	contents := postgres.NewContentRepository(pool)

	hash, err := auth.NewPasswordHasher(bcrypt.DefaultCost).Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := users.Create(ctx, &domain.User{Name: seedName, Email: seedEmail, Password: &hash})
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		fmt.Printf("User %s already exists, nothing to do\n", seedEmail)
		return
	case err != nil:
		log.Fatalf("create user: %v", err)
	}

	for _, d := range drafts {
		if _, err := contents.Create(ctx, &domain.Content{UserID: user.ID, Title: d.title, Body: d.body}); err != nil {
			log.Fatalf("create content %q: %v", d.title, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:     %s (id %d)\n", seedEmail, user.ID)
	fmt.Printf("  Password: %s\n", seedPassword)
	fmt.Printf("  Drafts:   %d\n", len(drafts))
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("  curl -s -c cookies.txt -X POST http://localhost:8080/login \\\n")
	fmt.Printf("    -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  curl -s -b cookies.txt http://localhost:8080/content")
}
