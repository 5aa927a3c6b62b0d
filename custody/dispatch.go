package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/verdantlabs/walletgate/session"
)

// retryBudget is the maximum number of refresh-and-retry cycles per
// logical call. One bounds worst-case latency to a single extra round
// trip and rules out refresh loops.
const retryBudget = 1

// maxResponseBodySize caps how much of any response body is read. Error
// bodies are truncated further before message normalization.
const maxResponseBodySize = 4 << 20

// call describes one logical request to the custody backend.
type call struct {
	method  string
	path    string
	body    any
	headers map[string]string
	// skipAuth marks endpoints that run without a bearer token
	// (unlock, auto-unlock, refresh, session store).
	skipAuth bool
	// requireCore gates the call on a core-role wallet session.
	requireCore bool
	// out, when non-nil, receives the decoded 2xx response body.
	out any
}

// do runs the dispatch state machine: read session, refresh pre-flight if
// the token is expired, send, and retry once after a refresh on 401. The
// session from a refresh is carried forward directly — a cookie-backed
// repository reads the request's cookie, so a re-read would see the stale
// token the refresh just replaced. An explicit refresh counter, not
// recursion, so the budget check cannot be bypassed.
func (c *Client) do(ctx context.Context, repo session.Repository, cl call) error {
	var sess *session.WalletSession
	refreshes := 0
	for {
		if !cl.skipAuth {
			if sess == nil {
				var err error
				if cl.requireCore {
					sess, err = repo.GetCore()
				} else {
					sess, err = repo.Get()
				}
				if err != nil {
					return err
				}
				if sess == nil {
					if cl.requireCore {
						return coreRequiredError()
					}
					return notAuthenticatedError()
				}
			}
			if session.IsExpired(sess, c.Now()) {
				if refreshes >= retryBudget {
					_ = repo.Clear()
					return sessionExpiredError()
				}
				next, ok := c.Refresh(ctx, repo)
				if !ok {
					_ = repo.Clear()
					return sessionExpiredError()
				}
				refreshes++
				sess = next
			}
		}

		status, body, err := c.send(ctx, sess, cl)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized && !cl.skipAuth {
			// The token looked fresh locally but the backend rejected
			// it — it may have been invalidated server-side. Same
			// recovery as pre-flight expiry, same budget.
			if refreshes >= retryBudget {
				_ = repo.Clear()
				return sessionExpiredError()
			}
			next, ok := c.Refresh(ctx, repo)
			if !ok {
				_ = repo.Clear()
				return sessionExpiredError()
			}
			refreshes++
			sess = next
			continue
		}

		if status < 200 || status > 299 {
			return httpError(status, body)
		}

		if cl.out != nil {
			if err := json.Unmarshal(body, cl.out); err != nil {
				return fmt.Errorf("decoding %s %s response: %w", cl.method, cl.path, err)
			}
		}
		return nil
	}
}

// send performs the HTTP exchange for one attempt and returns the status
// and body. Transport failures come back as *Error with a network or
// timeout kind.
func (c *Client) send(ctx context.Context, sess *session.WalletSession, cl call) (int, []byte, error) {
	var reqBody io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding %s %s request: %w", cl.method, cl.path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	key, err := c.apiKeyValue()
	if err != nil {
		return 0, nil, fmt.Errorf("opening api key: %w", err)
	}
	req.Header.Set(apiKeyHeader, key)

	if sess != nil && !cl.skipAuth {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return 0, nil, transportError(err)
	}
	return resp.StatusCode, body, nil
}

func transportError(err error) *Error {
	kind := KindNetwork
	msg := "custody backend unreachable"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
		msg = "custody backend timed out"
	}
	return &Error{
		Status:  http.StatusBadGateway,
		Kind:    kind,
		Message: msg,
		err:     err,
	}
}
