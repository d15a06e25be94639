package blob

import "context"

// Publisher persists image bytes and returns a durable, fetchable URL.
type Publisher interface {
	Put(ctx context.Context, key string, data []byte, mime string) (string, error)
}

// Fetcher retrieves the user's reference image from its submitted URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}
