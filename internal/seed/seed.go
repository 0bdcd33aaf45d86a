// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var topics = []string{
	"golang", "coffee", "music", "gamedev", "running", "photography",
	"cooking", "travel", "startups", "opensource", "books", "cycling",
}

// Seed populates the database with test data. Posts are created through the
// post service so mentions, hashtags and notifications are derived the same
// way they are in production.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, nil, logger)
	postService := service.NewPostService(postRepo, userRepo, notificationService, logger)
	userService := service.NewUserService(userRepo, followRepo, notificationService, logger)

	users, err := createUsers(ctx, userRepo, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	if err := createFollows(ctx, userService, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}

	posts, err := createPosts(ctx, postService, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createLikes(ctx, postService, users, posts); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, api_keys, bookmarks, likes, mentions,
		post_hashtags, hashtags, posts, follows, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(ctx context.Context, users repository.UserRepository, count int) ([]*models.User, error) {
	created := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		user := &models.User{
			Username:      fmt.Sprintf("%s%d", username, i),
			DisplayName:   gofakeit.Name(),
			WalletAddress: fmt.Sprintf("0x%x", gofakeit.UUID()),
			Bio:           gofakeit.Sentence(10),
			Location:      gofakeit.City(),
			WebsiteURL:    gofakeit.URL(),
			AvatarURL:     gofakeit.ImageURL(200, 200),
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, err
		}
		created = append(created, user)
	}
	return created, nil
}

func createFollows(ctx context.Context, userService *service.UserService, users []*models.User) error {
	for _, follower := range users {
		for i := 0; i < 3 && len(users) > 1; i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			// Random pairs can collide; duplicate follows are expected.
			if err := userService.Follow(ctx, follower.ID, target.ID); err != nil {
				continue
			}
		}
	}
	return nil
}

func createPosts(ctx context.Context, postService *service.PostService, users []*models.User, count int) ([]*models.Post, error) {
	created := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		text := gofakeit.Sentence(rand.Intn(12) + 3)

		// A slice of posts carries hashtags and mentions so search, trending
		// and notifications have data to work with.
		if rand.Intn(3) == 0 {
			text = fmt.Sprintf("%s #%s", text, topics[rand.Intn(len(topics))])
		}
		if rand.Intn(4) == 0 {
			other := users[rand.Intn(len(users))]
			text = fmt.Sprintf("@%s %s", other.Username, text)
		}

		input := service.CreatePostInput{AuthorID: author.ID, Text: text}
		if len(created) > 0 && rand.Intn(5) == 0 {
			parent := created[rand.Intn(len(created))]
			input.ParentPostID = &parent.ID
		}

		post, err := postService.CreatePost(ctx, input)
		if err != nil {
			return nil, err
		}
		created = append(created, post)
	}
	return created, nil
}

func createLikes(ctx context.Context, postService *service.PostService, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for i := 0; i < rand.Intn(4); i++ {
			user := users[rand.Intn(len(users))]
			if _, err := postService.Like(ctx, user.ID, post.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
