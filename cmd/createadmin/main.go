// Command createadmin inserts an admin account directly into the database.
// Registration always assigns role "user", so the first admin has to be
// bootstrapped out of band.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kindleapp/kindle-api/internal/config"
	"github.com/kindleapp/kindle-api/internal/database"
	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/repository"
	"github.com/kindleapp/kindle-api/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required, min 8 chars)")
	name := flag.String("name", "Admin", "first name")
	surname := flag.String("surname", "Admin", "surname")
	dob := flag.String("dob", "1990-01-01", "date of birth, YYYY-MM-DD")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("email and password are required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := uuid.New()
	err = repository.NewUserRepo(db).Create(ctx, model.User{
		ID:           id,
		Email:        *email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Name:         *name,
		Surname:      *surname,
		DateOfBirth:  *dob,
		Gender:       "m",
		Country:      "N/A",
		City:         "N/A",
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Fatalf("user with email %s already exists", *email)
		}
		log.Fatalf("create admin: %v", err)
	}
	fmt.Printf("created admin %s (%s)\n", *email, id)
}
