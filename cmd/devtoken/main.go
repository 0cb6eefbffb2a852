// Command devtoken mints a signed bearer token for local testing, so curl
// sessions against a dev server do not need the full register/verify/login
// dance.
//
//	go run ./cmd/devtoken -user <uuid> -email dev@example.com -role admin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/platform/auth/token"
	"github.com/scc-freight/freight-api/internal/platform/config"
)

func main() {
	userID := flag.String("user", "", "user id to embed (default: random uuid)")
	email := flag.String("email", "dev@example.com", "email claim")
	role := flag.String("role", "admin", "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	r, ok := domain.ParseRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(1)
	}
	id := *userID
	if id == "" {
		id = uuid.NewString()
	}

	signer := token.New(token.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    *ttl,
	})
	tok, err := signer.Issue(domain.User{
		ID:    domain.UserID(id),
		Email: *email,
		Role:  r,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tok)
}
