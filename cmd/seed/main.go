// Command seed populates a development database with generated users,
// posts, follows, likes, and comments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	userCount := flag.Int("users", 25, "number of users to create")
	postsPerUser := flag.Int("posts", 4, "max posts per user")
	seed := flag.Int64("seed", 0, "PRNG seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// Every seeded account shares one known password for local testing.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := make([]*models.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user := &models.User{
			Username:    username,
			Email:       fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:    string(hash),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.HipsterSentence(8),
			Active:      true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("Skipping user %s: %v", username, err)
			continue
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < gofakeit.Number(0, *postsPerUser); i++ {
			content := gofakeit.HipsterSentence(10)
			if len(content) > models.MaxContentLen {
				content = content[:models.MaxContentLen]
			}
			post := &models.Post{Content: content, UserID: u.ID, Username: u.Username}
			if err := postRepo.Create(ctx, post); err != nil {
				log.Printf("Skipping post for %s: %v", u.Username, err)
				continue
			}
			posts = append(posts, post)
		}
	}
	log.Printf("Created %d posts", len(posts))

	follows, likes, comments := 0, 0, 0
	for _, u := range users {
		for _, other := range users {
			if other.ID == u.ID || gofakeit.Number(0, 2) != 0 {
				continue
			}
			if err := followRepo.Follow(ctx, u.ID, other.ID); err == nil {
				follows++
			}
		}
		for _, p := range posts {
			if gofakeit.Number(0, 3) == 0 {
				if err := postRepo.Like(ctx, u.ID, p.ID); err == nil {
					likes++
				}
			}
			if gofakeit.Number(0, 7) == 0 {
				comment := &models.Comment{
					Content:  gofakeit.HipsterSentence(6),
					PostID:   p.ID,
					UserID:   u.ID,
					Username: u.Username,
				}
				if err := commentRepo.Create(ctx, comment); err == nil {
					comments++
				}
			}
		}
	}
	log.Printf("Created %d follows, %d likes, %d comments", follows, likes, comments)
}
