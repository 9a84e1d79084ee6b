package models

import "time"

// AuthToken là token đang hoạt động của một người dùng (mỗi người dùng tối đa một token)
type AuthToken struct {
	Key      string
	UserID   int64
	Username string
	Created  time.Time
}
