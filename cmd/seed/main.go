package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cirvee/earnings-backend/internal/config"
	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/google/uuid"
)

// Seeds the referral store with demo users, links and referrals so the
// earnings endpoints have something to aggregate in development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbURL := cfg.Database.ReferralURL
	if dbURL == "" {
		dbURL = cfg.Database.URL
	}

	db, err := database.New(dbURL, 5)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := []struct {
		name  string
		email string
	}{
		{"Asha Verma", "asha@example.com"},
		{"Rohit Singh", "rohit@example.com"},
		{"Priya Nair", "priya@example.com"},
	}

	operators := []string{"Airtel", "Vi", "Jio"}

	for i, u := range users {
		// Upsert so re-running the seeder keeps the existing user id.
		var userID uuid.UUID
		err := db.Pool.QueryRow(ctx, `
			INSERT INTO users (id, name, email, role)
			VALUES ($1, $2, $3, 'user')
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, uuid.New(), u.name, u.email).Scan(&userID)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.email, err)
		}

		for j, op := range operators {
			linkID := uuid.New()
			code := fmt.Sprintf("%s-%s-%03d", op[:2], u.name[:2], i*len(operators)+j)
			_, err := db.Pool.Exec(ctx, `
				INSERT INTO referral_links (id, user_id, operator, code)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (code) DO NOTHING
			`, linkID, userID, op, code)
			if err != nil {
				log.Fatalf("Failed to seed referral link: %v", err)
			}

			// A mix of approved and pending referrals per link.
			for k := 0; k < 3; k++ {
				status := "approved"
				if k == 2 {
					status = "pending"
				}
				_, err := db.Pool.Exec(ctx, `
					INSERT INTO referrals (id, referral_link_id, referred_name, referred_phone, status)
					VALUES ($1, $2, $3, $4, $5)
				`, uuid.New(), linkID, fmt.Sprintf("Lead %d-%d-%d", i, j, k), "9800000000", status)
				if err != nil {
					log.Fatalf("Failed to seed referral: %v", err)
				}
			}
		}

		log.Printf("Seeded user %s (%s)", u.name, userID)
	}

	log.Println("Seed complete")
}
