package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// Client talks to the identity provider's admin API with a service-role key.
// Used for the auxiliary confirmation endpoints only; the provider owns all
// other account state.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

type adminUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
}

type adminUserList struct {
	Users []adminUser `json:"users"`
}

// CheckEmailConfirmed reports whether the account for email has a confirmed
// email address. An unknown email is "not confirmed", not an error.
func (c *Client) CheckEmailConfirmed(ctx context.Context, email string) (bool, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users?email=%s", c.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("identity: building request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("identity: admin user lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("identity: admin user lookup: status %d", resp.StatusCode)
	}

	var list adminUserList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return false, fmt.Errorf("identity: decoding admin response: %w", err)
	}

	for _, u := range list.Users {
		if u.Email == email {
			return u.EmailConfirmedAt != "", nil
		}
	}
	return false, nil
}

// ConfirmUser marks the account for email as confirmed via the admin API.
func (c *Client) ConfirmUser(ctx context.Context, email string) error {
	id, err := c.lookupUserID(ctx, email)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]bool{"email_confirm": true})
	if err != nil {
		return fmt.Errorf("identity: encoding confirm request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("identity: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: confirming user: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: confirming user: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) lookupUserID(ctx context.Context, email string) (string, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users?email=%s", c.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("identity: building request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: admin user lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity: admin user lookup: status %d", resp.StatusCode)
	}

	var list adminUserList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("identity: decoding admin response: %w", err)
	}
	for _, u := range list.Users {
		if u.Email == email {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("identity: no account for %s", email)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}
