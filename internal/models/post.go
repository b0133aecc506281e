package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls which non-author accounts may see a post.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityFollowers = "followers"
)

// ValidVisibility reports whether v is a known visibility value.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFollowers:
		return true
	}
	return false
}

// MaxCaptionLen is the maximum caption length for posts and replies.
const MaxCaptionLen = 280

// Post represents a post document in the posts collection.
type Post struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author     primitive.ObjectID   `bson:"author" json:"author"`
	Title      string               `bson:"title" json:"title"`
	Caption    string               `bson:"caption" json:"caption"`
	FileURL    string               `bson:"fileURL,omitempty" json:"fileURL,omitempty"`
	Likes      []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies    []primitive.ObjectID `bson:"replies" json:"replies"`
	Visibility string               `bson:"visibility" json:"visibility"`
	Hashtags   []string             `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	Location   string               `bson:"location,omitempty" json:"location,omitempty"`
	Views      int                  `bson:"views" json:"views"`
	ViewedBy   []primitive.ObjectID `bson:"viewedBy" json:"viewedBy"`
	EditedBy   *primitive.ObjectID  `bson:"editedBy,omitempty" json:"editedBy,omitempty"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`

	// AuthorSummary is resolved at read time, never stored.
	AuthorSummary *UserSummary `bson:"-" json:"authorSummary,omitempty"`
}

// LikedBy reports whether the given user has liked the post.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// ViewedByUser reports whether the given user has already viewed the post.
func (p *Post) ViewedByUser(userID primitive.ObjectID) bool {
	return containsID(p.ViewedBy, userID)
}
