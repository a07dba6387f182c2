package redis

import "fmt"

const (
	// KeyPrefixBookmark is the prefix for bookmark keys
	KeyPrefixBookmark = "userbrowser:bookmark:"
	// KeyAllBookmarks is the key for the set of all bookmarked user IDs
	KeyAllBookmarks = "userbrowser:bookmarks:all"
)

// BookmarkKey returns the Redis key for a bookmark by user ID
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// AllBookmarksKey returns the key for the set of all bookmarked user IDs
func AllBookmarksKey() string {
	return KeyAllBookmarks
}

// ExtractUserID extracts the user ID from a bookmark key
func ExtractUserID(key string) (string, error) {
	if len(key) <= len(KeyPrefixBookmark) || key[:len(KeyPrefixBookmark)] != KeyPrefixBookmark {
		return "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	return key[len(KeyPrefixBookmark):], nil
}
