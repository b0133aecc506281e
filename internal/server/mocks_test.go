package server

import (
	"context"

	"github.com/HannaFrangi/Lynx/internal/config"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"
	"github.com/HannaFrangi/Lynx/internal/service"
	"github.com/HannaFrangi/Lynx/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockTxn runs the function without a session.
type mockTxn struct{}

func (mockTxn) Atomically(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return m.Called(ctx, followerID, targetID).Error(0)
}

func (m *MockUserRepository) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return m.Called(ctx, followerID, targetID).Error(0)
}

func (m *MockUserRepository) Relations(ctx context.Context, id primitive.ObjectID, kind repository.RelationKind) ([]models.UserSummary, error) {
	args := m.Called(ctx, id, kind)
	summaries, _ := args.Get(0).([]models.UserSummary)
	return summaries, args.Error(1)
}

func (m *MockUserRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockUserRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockUserRepository) AddPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockUserRepository) RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *MockUserRepository) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	byID, _ := args.Get(0).(map[primitive.ObjectID]models.UserSummary)
	return byID, args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	if args.Error(0) == nil && post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Post, error) {
	args := m.Called(ctx, id, fields)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return m.Called(ctx, postID, userID).Error(0)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return m.Called(ctx, postID, userID).Error(0)
}

func (m *MockPostRepository) MarkViewed(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	args := m.Called(ctx, postID, userID)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) PushReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	return m.Called(ctx, postID, replyID).Error(0)
}

func (m *MockPostRepository) PullReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	return m.Called(ctx, postID, replyID).Error(0)
}

func (m *MockPostRepository) FindVisible(ctx context.Context, viewerID primitive.ObjectID, following []primitive.ObjectID, skip, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, viewerID, following, skip, limit)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) FindAll(ctx context.Context, skip, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, skip, limit)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockReplyRepository struct {
	mock.Mock
}

func (m *MockReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	args := m.Called(ctx, reply)
	if args.Error(0) == nil && reply.ID.IsZero() {
		reply.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockReplyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reply, error) {
	args := m.Called(ctx, id)
	reply, _ := args.Get(0).(*models.Reply)
	return reply, args.Error(1)
}

func (m *MockReplyRepository) UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Reply, error) {
	args := m.Called(ctx, id, caption)
	reply, _ := args.Get(0).(*models.Reply)
	return reply, args.Error(1)
}

func (m *MockReplyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type discardStore struct{}

func (discardStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	return "/media/" + path, nil
}

func (discardStore) Delete(ctx context.Context, url string) error { return nil }

type testMocks struct {
	users   *MockUserRepository
	posts   *MockPostRepository
	replies *MockReplyRepository
}

// newTestServer wires a Server over mocked repositories.
func newTestServer() (*Server, *testMocks) {
	mocks := &testMocks{
		users:   new(MockUserRepository),
		posts:   new(MockPostRepository),
		replies: new(MockReplyRepository),
	}

	var store storage.ObjectStore = discardStore{}
	s := &Server{
		config:    &config.Config{JWTSecret: "test-secret", Env: "test"},
		store:     store,
		userRepo:  mocks.users,
		postRepo:  mocks.posts,
		replyRepo: mocks.replies,
	}
	s.authService = service.NewAuthService(mocks.users)
	s.userService = service.NewUserService(mocks.users, mockTxn{}, store)
	s.postService = service.NewPostService(mocks.posts, mocks.users, mockTxn{}, store)
	s.replyService = service.NewReplyService(mocks.replies, mocks.posts, mockTxn{})
	s.feedService = service.NewFeedService(mocks.posts, mocks.users)

	return s, mocks
}

// asUser installs a fake auth layer that injects the given user id.
func asUser(app *fiber.App, id primitive.ObjectID) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		return c.Next()
	})
}
