package media

import "strings"

// thumbsSegment is inserted before the filename when deriving thumbnail keys.
const thumbsSegment = "thumbs"

// ThumbnailKey derives the thumbnail variant key for a stored asset key of
// the form "category/entityId/filename", inserting a "thumbs" segment before
// the filename: "avatars/42/foo.jpg" becomes "avatars/42/thumbs/foo.jpg".
// Keys with fewer than three segments yield ok=false.
//
// The derivation is not idempotent: applying it to an already-derived key
// inserts a second "thumbs" segment. Callers must only derive from original
// asset keys.
func ThumbnailKey(key string) (thumbKey string, ok bool) {
	segments := strings.Split(key, "/")
	if len(segments) < 3 {
		return "", false
	}

	filename := segments[len(segments)-1]
	prefix := segments[:len(segments)-1]

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, prefix...)
	parts = append(parts, thumbsSegment, filename)
	return strings.Join(parts, "/"), true
}
