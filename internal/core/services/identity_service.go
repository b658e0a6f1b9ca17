package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"fintech-financing/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// introspectCacheTTL bounds how long a validated token is trusted without
// asking the user service again.
const introspectCacheTTL = 60 * time.Second

// Introspection endpoints the user service has exposed across deployments,
// tried in order.
var introspectPaths = []string{
	"/auth/token/introspect",
	"/validate-token",
	"/auth/validate-token",
	"/auth/token/validate",
}

// IdentityService resolves bearer tokens to principals against the external
// user service. Introspection is fail-closed: any transport error, non-2xx
// response or malformed body makes the token invalid.
type IdentityService struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
}

// NewIdentityService creates a new identity service. cache may be nil to
// disable introspection caching.
func NewIdentityService(baseURL string, cache *redis.Client) *IdentityService {
	return &IdentityService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// identityPayload covers the user shapes the user service returns: either
// {user: {...}} or the user object at the top level, with _id or id.
type identityPayload struct {
	User *identityUser `json:"user"`
	identityUser
}

type identityUser struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

func (u identityUser) userID() string {
	if u.ID != "" {
		return u.ID
	}
	return u.MongoID
}

// Introspect resolves a bearer token to a principal.
func (s *IdentityService) Introspect(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	cacheKey := "introspect:" + hashToken(token)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var u identityUser
			if json.Unmarshal(cached, &u) == nil && u.userID() != "" {
				return toPrincipal(u), nil
			}
		}
	}

	body, _ := json.Marshal(map[string]string{"token": token})

	var lastErr error
	for _, path := range introspectPaths {
		u, err := s.postIntrospect(ctx, s.baseURL+path, body)
		if err != nil {
			lastErr = err
			continue
		}

		if s.cache != nil {
			if raw, err := json.Marshal(u); err == nil {
				if err := s.cache.Set(ctx, cacheKey, raw, introspectCacheTTL).Err(); err != nil {
					log.Printf("introspection cache write failed: %v", err)
				}
			}
		}
		return toPrincipal(u), nil
	}

	log.Printf("token introspection failed on all endpoints: %v", lastErr)
	return nil, domain.ErrUnauthorized
}

func (s *IdentityService) postIntrospect(ctx context.Context, url string, body []byte) (identityUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return identityUser{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return identityUser{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return identityUser{}, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return identityUser{}, err
	}

	var payload identityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return identityUser{}, fmt.Errorf("malformed body from %s: %w", url, err)
	}

	user := payload.identityUser
	if payload.User != nil {
		user = *payload.User
	}
	if user.userID() == "" {
		return identityUser{}, fmt.Errorf("no user in payload from %s", url)
	}
	return user, nil
}

// ResolveUser looks up a user profile by id, used to address owner emails
// when the acting principal is not the owner.
func (s *IdentityService) ResolveUser(ctx context.Context, id string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/users/"+id, nil)
	if err != nil {
		return domain.User{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.User{}, fmt.Errorf("status %d resolving user %s", resp.StatusCode, id)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.User{}, err
	}

	var payload identityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.User{}, err
	}
	user := payload.identityUser
	if payload.User != nil {
		user = *payload.User
	}
	if user.userID() == "" {
		return domain.User{}, fmt.Errorf("no user in payload for %s", id)
	}
	return domain.User{ID: user.userID(), Email: user.Email, Name: user.Name}, nil
}

func toPrincipal(u identityUser) domain.Principal {
	if u.Role == "admin" {
		return domain.Admin{ID: u.userID(), Email: u.Email, Name: u.Name}
	}
	return domain.User{ID: u.userID(), Email: u.Email, Name: u.Name}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
