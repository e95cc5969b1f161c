package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

// HTTPTransport syncs against a daybookd server over its JSON API.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport for the given server base URL.
// The token, if non-empty, is sent as a bearer credential.
func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
	}
}

type snapshotPayload struct {
	models.Snapshot
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

type snapshotResponse struct {
	models.Snapshot
	SyncedAt time.Time `json:"synced_at"`
}

type ackResponse struct {
	SyncedAt time.Time `json:"synced_at"`
}

func (t *HTTPTransport) FetchAll(ctx context.Context, userID string) (*PullResult, error) {
	if userID == "" {
		return nil, ErrNotConfigured
	}

	var resp snapshotResponse
	if err := t.do(ctx, http.MethodGet, t.snapshotURL(userID), nil, &resp); err != nil {
		return nil, err
	}

	return &PullResult{Snapshot: resp.Snapshot, SyncedAt: resp.SyncedAt}, nil
}

func (t *HTTPTransport) UpsertAll(ctx context.Context, userID string, snap models.Snapshot, lastSyncedAt *time.Time) (*PushResult, error) {
	if userID == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(snapshotPayload{Snapshot: snap, LastSyncedAt: lastSyncedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var resp ackResponse
	if err := t.do(ctx, http.MethodPut, t.snapshotURL(userID), body, &resp); err != nil {
		return nil, err
	}

	return &PushResult{SyncedAt: resp.SyncedAt}, nil
}

func (t *HTTPTransport) snapshotURL(userID string) string {
	return fmt.Sprintf("%s/api/v1/users/%s/snapshot", t.baseURL, userID)
}

func (t *HTTPTransport) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sync server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode sync response: %w", err)
		}
	}

	return nil
}
