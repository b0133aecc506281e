// Package models contains the document structures for the application's domain.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document in the users collection.
type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username      string               `bson:"username" json:"username"`
	Email         string               `bson:"email" json:"email"`
	Name          string               `bson:"name" json:"name"`
	Password      string               `bson:"password" json:"-"`
	IsActive      bool                 `bson:"isActive" json:"isActive"`
	Following     []primitive.ObjectID `bson:"following" json:"following"`
	Followers     []primitive.ObjectID `bson:"followers" json:"followers"`
	LikedPosts    []primitive.ObjectID `bson:"likedPosts" json:"likedPosts"`
	Posts         []primitive.ObjectID `bson:"posts" json:"posts"`
	Bio           string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Location      string               `bson:"location,omitempty" json:"location,omitempty"`
	Website       string               `bson:"website,omitempty" json:"website,omitempty"`
	ProfilePicURL string               `bson:"profilePicURL,omitempty" json:"profilePicURL,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the denormalized author shape embedded in feed and
// relation responses.
type UserSummary struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Username      string             `bson:"username" json:"username"`
	ProfilePicURL string             `bson:"profilePicURL,omitempty" json:"profilePicURL,omitempty"`
}

// Summary returns the public summary fields of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		ProfilePicURL: u.ProfilePicURL,
	}
}

// IsFollowing reports whether id is in the user's following list.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// HasLiked reports whether the user has liked the given post.
func (u *User) HasLiked(postID primitive.ObjectID) bool {
	return containsID(u.LikedPosts, postID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
