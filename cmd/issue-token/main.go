// Command issue-token creates (or looks up) a user and prints a signed
// access token for it.  Sign-up and login live outside this service; the
// token stands in for the session they would establish.
//
//	issue-token -email alice@example.com [-role ADMIN] [-ttl 60]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/train-seat-reservation/internal/database"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
	"github.com/iliyamo/train-seat-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "user email (required)")
	role := flag.String("role", model.RoleCustomer, "CUSTOMER or ADMIN")
	ttl := flag.Int("ttl", 60, "token lifetime in minutes")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != model.RoleCustomer && *role != model.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required env var: JWT_SECRET")
	}

	db, err := database.Open(database.Options{
		User: os.Getenv("DB_USER"),
		Pass: os.Getenv("DB_PASS"),
		Host: os.Getenv("DB_HOST"),
		Port: os.Getenv("DB_PORT"),
		Name: os.Getenv("DB_NAME"),
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	u, err := repository.NewUserRepo(db).Ensure(ctx, *email, *role)
	if err != nil {
		log.Fatalf("ensure user: %v", err)
	}

	tok, err := utils.NewAccessToken(secret, u.ID, u.Role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "user_id=%d role=%s expires=%s\n", u.ID, u.Role, tok.Exp.Format(time.RFC3339))
	fmt.Println(tok.Token)
}
