package service

import (
	"context"
	"strings"

	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"
	"github.com/HannaFrangi/Lynx/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService provides profile and follow-graph business logic.
type UserService struct {
	users repository.UserRepository
	txn   database.TxnRunner
	store storage.ObjectStore
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository, txn database.TxnRunner, store storage.ObjectStore) *UserService {
	return &UserService{users: users, txn: txn, store: store}
}

// FollowResult reports the outcome of a follow toggle.
type FollowResult struct {
	NowFollowing         bool `json:"nowFollowing"`
	ViewerFollowingCount int  `json:"viewerFollowingCount"`
	TargetFollowersCount int  `json:"targetFollowersCount"`
}

// FollowUnfollow toggles the follow edge between viewer and target. Both
// sides of the edge are updated in one transaction so the lists can never
// disagree.
func (s *UserService) FollowUnfollow(ctx context.Context, viewerID, targetID primitive.ObjectID) (*FollowResult, error) {
	if viewerID == targetID {
		return nil, models.NewValidationError("you can't follow yourself")
	}

	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	following := viewer.IsFollowing(targetID)
	err = s.txn.Atomically(ctx, func(ctx context.Context) error {
		if following {
			return s.users.RemoveFollow(ctx, viewerID, targetID)
		}
		return s.users.AddFollow(ctx, viewerID, targetID)
	})
	if err != nil {
		return nil, err
	}

	// Re-read for fresh counts; the toggle invalidated both cache entries.
	viewer, err = s.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return &FollowResult{
		NowFollowing:         !following,
		ViewerFollowingCount: len(viewer.Following),
		TargetFollowersCount: len(target.Followers),
	}, nil
}

// ListRelations returns the followers or following list as user summaries.
func (s *UserService) ListRelations(ctx context.Context, userID primitive.ObjectID, kind string) ([]models.UserSummary, error) {
	var rk repository.RelationKind
	switch kind {
	case string(repository.RelationFollowers):
		rk = repository.RelationFollowers
	case string(repository.RelationFollowing):
		rk = repository.RelationFollowing
	default:
		return nil, models.NewValidationError("kind must be followers or following")
	}
	return s.users.Relations(ctx, userID, rk)
}

// ProfileUpdate carries the optional profile fields. Nil pointers mean
// the field is untouched.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	Location *string
	Website  *string
	Picture  *Upload
}

// UpdateProfile applies a partial profile update. A new picture is stored
// under a deterministic per-user path so re-uploads overwrite in place.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("name can't be empty")
		}
		fields["name"] = name
	}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Website != nil {
		fields["website"] = strings.TrimSpace(*in.Website)
	}

	if in.Picture != nil {
		ext, err := in.Picture.ext()
		if err != nil {
			return nil, err
		}

		current, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		url, err := s.store.Put(ctx, "profile_pics/"+userID.Hex()+ext, in.Picture.Data, in.Picture.ContentType)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if current.ProfilePicURL != "" && current.ProfilePicURL != url {
			_ = s.store.Delete(ctx, current.ProfilePicURL)
		}
		fields["profilePicURL"] = url
	}

	if len(fields) == 0 {
		return nil, models.NewValidationError("nothing to update")
	}
	return s.users.UpdateFields(ctx, userID, fields)
}
