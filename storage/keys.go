package storage

import (
	"fmt"
	"time"
)

// Key layout. IDs are UUID strings so the ':' separator never appears
// inside a segment. Emails may contain ':' (RFC 5321 quoted local
// parts), but they only ever occupy the final segment of their key, so
// an embedded separator cannot collide with the layout.
//
//	user:id:{user_id}                          user record
//	user:email:{email}                         user id, enforces unique emails
//	group:{group_id}                           group record
//	member:{group_id}:{user_id}                membership record
//	req:id:{request_id}                        join request record
//	req:group:{group_id}:{padded_ts}:{req_id}  creation-ordered index
//	req:pending:{group_id}:{user_id}           request id, enforces one PENDING
//
// The 19-digit zero padded UnixNano keeps lexicographic iteration in
// chronological order.

func userKey(id string) []byte {
	return []byte("user:id:" + id)
}

func userEmailKey(email string) []byte {
	return []byte("user:email:" + email)
}

func groupKey(id string) []byte {
	return []byte("group:" + id)
}

const groupPrefix = "group:"

func memberKey(groupID, userID string) []byte {
	return []byte("member:" + groupID + ":" + userID)
}

func memberPrefix(groupID string) []byte {
	return []byte("member:" + groupID + ":")
}

func requestKey(id string) []byte {
	return []byte("req:id:" + id)
}

func requestIndexKey(groupID string, at time.Time, requestID string) []byte {
	return []byte(fmt.Sprintf("req:group:%s:%019d:%s", groupID, at.UnixNano(), requestID))
}

func requestIndexPrefix(groupID string) []byte {
	return []byte("req:group:" + groupID + ":")
}

func pendingKey(groupID, userID string) []byte {
	return []byte("req:pending:" + groupID + ":" + userID)
}
