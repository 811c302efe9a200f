package cache

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultAvatarPattern is the static CDN URL probed for broadcaster
// avatars; %s is the login. The probe is an unauthenticated HEAD.
const DefaultAvatarPattern = "https://static-cdn.jtvnw.net/jtv_user_pictures/%s-profile_image-300x300.png"

// AvatarCache resolves and memoizes broadcaster avatar URLs by login.
// A 200 response marks the URL valid; any other status or transport
// failure is a negative result, cached so the CDN is not re-probed.
type AvatarCache struct {
	cache   *LookupCache
	client  *http.Client
	pattern string
}

func NewAvatarCache(pattern string) *AvatarCache {
	if pattern == "" {
		pattern = DefaultAvatarPattern
	}
	return &AvatarCache{
		cache:   NewLookupCache(),
		client:  &http.Client{Timeout: 5 * time.Second},
		pattern: pattern,
	}
}

// Lookup returns the avatar URL for login, or "" with found=false when
// the broadcaster has no resolvable avatar.
func (a *AvatarCache) Lookup(ctx context.Context, login string) (string, bool) {
	return a.cache.GetOrResolve(ctx, login, a.resolve)
}

func (a *AvatarCache) resolve(ctx context.Context, login string) (string, bool, error) {
	url := fmt.Sprintf(a.pattern, login)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", false, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, nil
	}
	return url, true, nil
}

// Clear drops all cached lookups, positives and negatives alike.
func (a *AvatarCache) Clear() {
	a.cache.Clear()
}
