// Package seed populates the database with plausible development data.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Password is the password every seeded account gets.
const Password = "password123"

// Seeder creates users, follow edges and posts through the repositories,
// so seeded data satisfies the same invariants as live traffic.
type Seeder struct {
	mongo   *database.Mongo
	users   repository.UserRepository
	posts   repository.PostRepository
	replies repository.ReplyRepository
}

// NewSeeder returns a Seeder over the given database.
func NewSeeder(mongo *database.Mongo) *Seeder {
	return &Seeder{
		mongo:   mongo,
		users:   repository.NewUserRepository(mongo.DB),
		posts:   repository.NewPostRepository(mongo.DB),
		replies: repository.NewReplyRepository(mongo.DB),
	}
}

// ClearAll removes all seeded collections.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, name := range []string{database.UsersCollection, database.PostsCollection, database.RepliesCollection} {
		if _, err := s.mongo.DB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
	}
	return nil
}

// SeedUsers creates n accounts with a shared password and a random
// follow mesh where roughly a third of all user pairs are connected.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		if len(username) < 3 {
			username += gofakeit.DigitN(3)
		}
		if len(username) > 20 {
			username = username[:20]
		}

		user := &models.User{
			Username: fmt.Sprintf("%s%d", username[:min(len(username), 16)], i),
			Email:    fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Name:     gofakeit.Name(),
			Password: string(hash),
			IsActive: true,
			Bio:      gofakeit.Sentence(8),
			Location: gofakeit.City(),
			Website:  gofakeit.URL(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	// Random follow mesh.
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || rand.Intn(3) != 0 {
				continue
			}
			if err := s.users.AddFollow(ctx, follower.ID, target.ID); err != nil {
				return nil, fmt.Errorf("follow edge: %w", err)
			}
		}
	}

	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the users, with likes, views
// and replies layered on top.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to author posts")
	}

	visibilities := []string{
		models.VisibilityPublic, models.VisibilityPublic, models.VisibilityPublic,
		models.VisibilityFollowers, models.VisibilityPrivate,
	}

	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Author:     author.ID,
			Title:      gofakeit.Sentence(4),
			Caption:    truncate(gofakeit.Sentence(12), models.MaxCaptionLen),
			Visibility: visibilities[rand.Intn(len(visibilities))],
			Hashtags:   []string{gofakeit.Word(), gofakeit.Word()},
			Location:   gofakeit.City(),
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("creating post %d: %w", i, err)
		}
		if err := s.users.AddPost(ctx, author.ID, post.ID); err != nil {
			return err
		}

		for _, user := range users {
			if rand.Intn(4) != 0 {
				continue
			}
			if err := s.posts.AddLike(ctx, post.ID, user.ID); err != nil {
				return err
			}
			if err := s.users.AddLikedPost(ctx, user.ID, post.ID); err != nil {
				return err
			}
			if _, _, err := s.posts.MarkViewed(ctx, post.ID, user.ID); err != nil {
				return err
			}
		}

		if rand.Intn(2) == 0 {
			replier := users[rand.Intn(len(users))]
			reply := &models.Reply{
				Author:      replier.ID,
				Caption:     truncate(gofakeit.Sentence(6), models.MaxCaptionLen),
				ReplyToPost: post.ID,
			}
			if err := s.replies.Create(ctx, reply); err != nil {
				return err
			}
			if err := s.posts.PushReply(ctx, post.ID, reply.ID); err != nil {
				return err
			}
		}
	}

	log.Printf("Seeded %d posts", n)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
