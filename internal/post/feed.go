package post

import (
	"time"

	"github.com/mediafeed/service/internal/user"
)

// UnknownEmail is shown for posts whose author no longer exists.
const UnknownEmail = "Unknown"

// FeedItem is a post enriched for a specific caller.
type FeedItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
	IsOwner   bool      `json:"is_owner"`
	Email     string    `json:"email"`
}

// Assemble joins posts with their authors' emails and flags the caller's
// own posts. Post order is preserved. The result is never nil.
func Assemble(posts []Post, users []user.User, callerID string) []FeedItem {
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		email, ok := emails[p.UserID]
		if !ok {
			email = UnknownEmail
		}
		items = append(items, FeedItem{
			ID:        p.ID,
			UserID:    p.UserID,
			Caption:   p.Caption,
			URL:       p.URL,
			FileType:  p.FileType,
			FileName:  p.FileName,
			CreatedAt: p.CreatedAt,
			IsOwner:   sameID(p.UserID, callerID),
			Email:     email,
		})
	}
	return items
}
