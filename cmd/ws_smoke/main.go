package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"earnhub/internal/db"
	"earnhub/internal/domain"
	"earnhub/internal/repository"
	"earnhub/internal/service"
)

// Connects to the running server's /ws feed as a throwaway user and
// prints every event for a few seconds. Approve a submission or decide
// a withdrawal for tg id 3001 from another terminal to see traffic.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ur := repository.NewUserRepository(pool)
	ctx := context.Background()

	u, err := ur.GetByTgID(ctx, 3001)
	if err != nil {
		u = &domain.User{
			TgID:         3001,
			Username:     "smoke",
			FirstName:    "Smoke",
			ReferralCode: repository.GenerateReferralCode(),
		}
		if err := ur.Create(ctx, u); err != nil {
			log.Fatalf("create user: %v", err)
		}
	}

	service.InitJWT()
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	log.Printf("connected as user id=%d tg_id=%d, listening for events...", u.ID, u.TgID)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		log.Printf("event: %s", string(msg))
	}

	log.Println("smoke test finished")
}
