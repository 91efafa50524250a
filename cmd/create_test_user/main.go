package main

import (
	"context"
	"log"
	"os"

	"earnhub/internal/db"
	"earnhub/internal/domain"
	"earnhub/internal/repository"
	"earnhub/internal/service"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	tgID := int64(1234567890)

	// try to find existing user
	existing, err := repo.GetByTgID(ctx, tgID)
	var u *domain.User
	if err == nil {
		u = existing
		log.Printf("user already exists id=%d\n", u.ID)
	} else {
		u = &domain.User{
			TgID:         tgID,
			Username:     "testuser",
			FirstName:    "Tester",
			ReferralCode: repository.GenerateReferralCode(),
		}

		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}

		log.Printf("user created id=%d referral_code=%s\n", u.ID, u.ReferralCode)
	}

	// seed a couple of tasks so the catalog is not empty
	taskRepo := repository.NewTaskRepository(pool)
	seed := []*domain.Task{
		{Title: "Join our news channel", Link: "https://t.me/earnhub_news", Reward: 50, Category: "social", IsActive: true},
		{Title: "Leave a review", Details: "Screenshot of the published review", Reward: 120, Category: "review", IsActive: true},
	}
	for _, t := range seed {
		if err := taskRepo.Create(ctx, t); err != nil {
			log.Printf("seed task %q failed: %v", t.Title, err)
			continue
		}
		log.Printf("task created id=%d title=%q reward=%d\n", t.ID, t.Title, t.Reward)
	}

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
