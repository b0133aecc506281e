package service

import (
	"context"
	"testing"

	"github.com/HannaFrangi/Lynx/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserServiceFollowSelf(t *testing.T) {
	svc := NewUserService(noopUserRepo(), txnStub{}, noopStore())
	id := primitive.NewObjectID()
	_, err := svc.FollowUnfollow(context.Background(), id, id)
	expectAppError(t, err, "VALIDATION_ERROR")
}

func TestUserServiceFollowRoundTrip(t *testing.T) {
	viewerID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()

	// In-memory follow graph driven through the stub, so the toggle's
	// reads observe the writes like the real store would.
	viewer := &models.User{ID: viewerID, IsActive: true}
	target := &models.User{ID: targetID, IsActive: true}

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		switch id {
		case viewerID:
			return viewer, nil
		case targetID:
			return target, nil
		}
		return nil, models.NewNotFoundError("User")
	}
	repo.addFollowFn = func(_ context.Context, followerID, tID primitive.ObjectID) error {
		viewer.Following = append(viewer.Following, tID)
		target.Followers = append(target.Followers, followerID)
		return nil
	}
	repo.removeFollowFn = func(context.Context, primitive.ObjectID, primitive.ObjectID) error {
		viewer.Following = nil
		target.Followers = nil
		return nil
	}

	svc := NewUserService(repo, txnStub{}, noopStore())

	res, err := svc.FollowUnfollow(context.Background(), viewerID, targetID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !res.NowFollowing {
		t.Fatal("expected nowFollowing after first toggle")
	}
	if res.ViewerFollowingCount != 1 || res.TargetFollowersCount != 1 {
		t.Fatalf("counts after follow: %+v", res)
	}

	res, err = svc.FollowUnfollow(context.Background(), viewerID, targetID)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if res.NowFollowing {
		t.Fatal("expected not following after second toggle")
	}
	if res.ViewerFollowingCount != 0 || res.TargetFollowersCount != 0 {
		t.Fatalf("counts after unfollow: %+v", res)
	}
}

func TestUserServiceFollowTargetMissing(t *testing.T) {
	viewerID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		if id == viewerID {
			return &models.User{ID: id}, nil
		}
		return nil, models.NewNotFoundError("User")
	}

	svc := NewUserService(repo, txnStub{}, noopStore())
	_, err := svc.FollowUnfollow(context.Background(), viewerID, targetID)
	expectAppError(t, err, "NOT_FOUND")
}

func TestUserServiceListRelationsBadKind(t *testing.T) {
	svc := NewUserService(noopUserRepo(), txnStub{}, noopStore())
	_, err := svc.ListRelations(context.Background(), primitive.NewObjectID(), "friends")
	expectAppError(t, err, "VALIDATION_ERROR")
}

func TestUserServiceUpdateProfile(t *testing.T) {
	userID := primitive.NewObjectID()

	repo := noopUserRepo()
	var gotFields bson.M
	repo.updateFieldsFn = func(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
		gotFields = fields
		return &models.User{ID: id}, nil
	}

	svc := NewUserService(repo, txnStub{}, noopStore())
	name := "  New Name "
	bio := "hello"
	_, err := svc.UpdateProfile(context.Background(), userID, ProfileUpdate{Name: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotFields["name"] != "New Name" {
		t.Fatalf("name not trimmed: %q", gotFields["name"])
	}
	if gotFields["bio"] != "hello" {
		t.Fatalf("bio missing: %v", gotFields)
	}
}

func TestUserServiceUpdateProfilePicture(t *testing.T) {
	userID := primitive.NewObjectID()

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		return &models.User{ID: id, ProfilePicURL: "/media/profile_pics/old.png"}, nil
	}

	store := noopStore()
	var putPath, deleted string
	store.putFn = func(_ context.Context, path string, _ []byte, _ string) (string, error) {
		putPath = path
		return "/media/" + path, nil
	}
	store.deleteFn = func(_ context.Context, url string) error {
		deleted = url
		return nil
	}

	svc := NewUserService(repo, txnStub{}, store)
	_, err := svc.UpdateProfile(context.Background(), userID, ProfileUpdate{
		Picture: &Upload{Filename: "me.JPG", ContentType: "image/jpeg", Data: []byte("img")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if putPath != "profile_pics/"+userID.Hex()+".jpg" {
		t.Fatalf("unexpected object path %q", putPath)
	}
	if deleted != "/media/profile_pics/old.png" {
		t.Fatalf("old picture not deleted, got %q", deleted)
	}
}

func TestUserServiceUpdateProfileEmpty(t *testing.T) {
	svc := NewUserService(noopUserRepo(), txnStub{}, noopStore())
	_, err := svc.UpdateProfile(context.Background(), primitive.NewObjectID(), ProfileUpdate{})
	expectAppError(t, err, "VALIDATION_ERROR")
}
