package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply represents a reply document in the replies collection. A reply is
// referenced by its parent post's replies list but owned by this collection.
type Reply struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author      primitive.ObjectID   `bson:"author" json:"author"`
	Caption     string               `bson:"caption" json:"caption"`
	ReplyToPost primitive.ObjectID   `bson:"replyToPost" json:"replyToPost"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
