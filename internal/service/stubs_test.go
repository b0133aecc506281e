package service

import (
	"context"

	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// txnStub runs the function directly, without a session.
type txnStub struct{}

func (txnStub) Atomically(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type storeStub struct {
	putFn    func(context.Context, string, []byte, string) (string, error)
	deleteFn func(context.Context, string) error
}

func (s *storeStub) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	return s.putFn(ctx, path, data, contentType)
}

func (s *storeStub) Delete(ctx context.Context, url string) error {
	return s.deleteFn(ctx, url)
}

func noopStore() *storeStub {
	return &storeStub{
		putFn:    func(_ context.Context, path string, _ []byte, _ string) (string, error) { return "/media/" + path, nil },
		deleteFn: func(context.Context, string) error { return nil },
	}
}

type userRepoStub struct {
	getByIDFn         func(context.Context, primitive.ObjectID) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	getByUsernameFn   func(context.Context, string) (*models.User, error)
	createFn          func(context.Context, *models.User) error
	updateFieldsFn    func(context.Context, primitive.ObjectID, bson.M) (*models.User, error)
	addFollowFn       func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	removeFollowFn    func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	relationsFn       func(context.Context, primitive.ObjectID, repository.RelationKind) ([]models.UserSummary, error)
	addLikedPostFn    func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	removeLikedPostFn func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	addPostFn         func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	removePostFn      func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	summariesByIDsFn  func(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *userRepoStub) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return s.addFollowFn(ctx, followerID, targetID)
}
func (s *userRepoStub) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return s.removeFollowFn(ctx, followerID, targetID)
}
func (s *userRepoStub) Relations(ctx context.Context, id primitive.ObjectID, kind repository.RelationKind) ([]models.UserSummary, error) {
	return s.relationsFn(ctx, id, kind)
}
func (s *userRepoStub) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.addLikedPostFn(ctx, userID, postID)
}
func (s *userRepoStub) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.removeLikedPostFn(ctx, userID, postID)
}
func (s *userRepoStub) AddPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.addPostFn(ctx, userID, postID)
}
func (s *userRepoStub) RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.removePostFn(ctx, userID, postID)
}
func (s *userRepoStub) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	return s.summariesByIDsFn(ctx, ids)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: id, IsActive: true}, nil
		},
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			return nil
		},
		updateFieldsFn: func(_ context.Context, id primitive.ObjectID, _ bson.M) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		addFollowFn:       func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		removeFollowFn:    func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		relationsFn:       func(context.Context, primitive.ObjectID, repository.RelationKind) ([]models.UserSummary, error) { return nil, nil },
		addLikedPostFn:    func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		removeLikedPostFn: func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		addPostFn:         func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		removePostFn:      func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		summariesByIDsFn: func(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
			return map[primitive.ObjectID]models.UserSummary{}, nil
		},
	}
}

type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, primitive.ObjectID) (*models.Post, error)
	updateFieldsFn func(context.Context, primitive.ObjectID, bson.M) (*models.Post, error)
	deleteFn       func(context.Context, primitive.ObjectID) error
	addLikeFn      func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	removeLikeFn   func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	markViewedFn   func(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Post, bool, error)
	pushReplyFn    func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	pullReplyFn    func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	findVisibleFn  func(context.Context, primitive.ObjectID, []primitive.ObjectID, int, int) ([]*models.Post, error)
	findAllFn      func(context.Context, int, int) ([]*models.Post, error)
	countAllFn     func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Post, error) {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *postRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.addLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.removeLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) MarkViewed(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	return s.markViewedFn(ctx, postID, userID)
}
func (s *postRepoStub) PushReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	return s.pushReplyFn(ctx, postID, replyID)
}
func (s *postRepoStub) PullReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	return s.pullReplyFn(ctx, postID, replyID)
}
func (s *postRepoStub) FindVisible(ctx context.Context, viewerID primitive.ObjectID, following []primitive.ObjectID, skip, limit int) ([]*models.Post, error) {
	return s.findVisibleFn(ctx, viewerID, following, skip, limit)
}
func (s *postRepoStub) FindAll(ctx context.Context, skip, limit int) ([]*models.Post, error) {
	return s.findAllFn(ctx, skip, limit)
}
func (s *postRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = primitive.NewObjectID()
			return nil
		},
		getByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		updateFieldsFn: func(_ context.Context, id primitive.ObjectID, _ bson.M) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		deleteFn:     func(context.Context, primitive.ObjectID) error { return nil },
		addLikeFn:    func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		removeLikeFn: func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		markViewedFn: func(_ context.Context, postID, _ primitive.ObjectID) (*models.Post, bool, error) {
			return &models.Post{ID: postID, Views: 1}, true, nil
		},
		pushReplyFn: func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		pullReplyFn: func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		findVisibleFn: func(context.Context, primitive.ObjectID, []primitive.ObjectID, int, int) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
		findAllFn: func(context.Context, int, int) ([]*models.Post, error) { return []*models.Post{}, nil },
		countAllFn: func(context.Context) (int64, error) { return 0, nil },
	}
}

type replyRepoStub struct {
	createFn        func(context.Context, *models.Reply) error
	getByIDFn       func(context.Context, primitive.ObjectID) (*models.Reply, error)
	updateCaptionFn func(context.Context, primitive.ObjectID, string) (*models.Reply, error)
	deleteFn        func(context.Context, primitive.ObjectID) error
}

func (s *replyRepoStub) Create(ctx context.Context, reply *models.Reply) error {
	return s.createFn(ctx, reply)
}
func (s *replyRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reply, error) {
	return s.getByIDFn(ctx, id)
}
func (s *replyRepoStub) UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Reply, error) {
	return s.updateCaptionFn(ctx, id, caption)
}
func (s *replyRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}

func noopReplyRepo() *replyRepoStub {
	return &replyRepoStub{
		createFn: func(_ context.Context, r *models.Reply) error {
			r.ID = primitive.NewObjectID()
			return nil
		},
		getByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.Reply, error) {
			return &models.Reply{ID: id}, nil
		},
		updateCaptionFn: func(_ context.Context, id primitive.ObjectID, caption string) (*models.Reply, error) {
			return &models.Reply{ID: id, Caption: caption}, nil
		},
		deleteFn: func(context.Context, primitive.ObjectID) error { return nil },
	}
}
