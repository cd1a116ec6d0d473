package notification

type Type string

const (
	FollowCreated    Type = "FOLLOW_CREATED"
	FollowRequest    Type = "FOLLOW_REQUEST"
	FollowAccepted   Type = "FOLLOW_ACCEPTED"
	ReportResolved   Type = "REPORT_RESOLVED"
	ContentModerated Type = "CONTENT_MODERATED"
)

// Key identifies an "X happened to Y because of Z" event. At most one unread
// notification exists per Key; nil correlation ids are part of the identity.
type Key struct {
	RecipientID string
	ActorID     string
	ReviewID    *string
	FollowID    *string
	Type        Type
}

func ForFollow(recipientID string, actorID string, followID string, typ Type) Key {
	return Key{RecipientID: recipientID, ActorID: actorID, FollowID: &followID, Type: typ}
}

func ForReview(recipientID string, actorID string, reviewID string, typ Type) Key {
	return Key{RecipientID: recipientID, ActorID: actorID, ReviewID: &reviewID, Type: typ}
}
