package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bethropolis/easel/internal/document"
)

// Remote is a Store that talks to an easeld server over HTTP.
type Remote struct {
	base   *url.URL
	client *http.Client
}

// NewRemote returns a client for the server at baseURL. A nil client uses
// one with a 30 second timeout.
func NewRemote(baseURL string, client *http.Client) (*Remote, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote store: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote store: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{base: u, client: client}, nil
}

func (r *Remote) endpoint(parts ...string) string {
	u := *r.base
	segs := append([]string{"api", "projects"}, parts...)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segs, "/")
	return u.String()
}

// apiError is the server's error body.
type apiError struct {
	Error string `json:"error"`
}

func (r *Remote) do(ctx context.Context, method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e apiError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		msg := e.Error
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", msg, ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w", msg, document.ErrInvalidSnapshot)
		}
		return errors.New(msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *Remote) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := r.do(ctx, http.MethodGet, r.endpoint(id), nil, &p); err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &p, nil
}

// Save sends the snapshot as the project's "json" field.
func (r *Remote) Save(ctx context.Context, id string, snap document.Snapshot) error {
	if snap.IsZero() {
		return fmt.Errorf("save %s: %w", id, document.ErrInvalidSnapshot)
	}
	body := struct {
		JSON document.Snapshot `json:"json"`
	}{snap}
	if err := r.do(ctx, http.MethodPatch, r.endpoint(id), body, nil); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (r *Remote) Create(ctx context.Context, params CreateParams) (*Project, error) {
	var p Project
	if err := r.do(ctx, http.MethodPost, r.endpoint(), params, &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (r *Remote) List(ctx context.Context, page Page) (*ProjectPage, error) {
	page = page.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("limit", strconv.Itoa(page.Limit))

	var out ProjectPage
	if err := r.do(ctx, http.MethodGet, r.endpoint()+"?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &out, nil
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	if err := r.do(ctx, http.MethodDelete, r.endpoint(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
