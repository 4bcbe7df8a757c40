// Package store persists projects: a name plus the canvas snapshot.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bethropolis/easel/internal/document"
)

// ErrNotFound is returned for operations on an unknown project ID.
var ErrNotFound = errors.New("project not found")

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	DefaultWidth     = 1080
	DefaultHeight    = 1080
)

// Project is a stored canvas document.
type Project struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Snapshot  document.Snapshot `json:"json"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CreateParams describe a new project. A zero Snapshot creates an empty
// Width x Height canvas.
type CreateParams struct {
	Name     string            `json:"name"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	Snapshot document.Snapshot `json:"json,omitempty"`
}

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the number of rows before the page.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// ProjectPage is one page of a listing, newest update first.
type ProjectPage struct {
	Data       []*Project `json:"data"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

func newProjectPage(data []*Project, p Page, total int) *ProjectPage {
	pages := 0
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	if data == nil {
		data = []*Project{}
	}
	return &ProjectPage{Data: data, Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// Store is the project persistence and load service.
type Store interface {
	Get(ctx context.Context, id string) (*Project, error)
	Save(ctx context.Context, id string, snap document.Snapshot) error
	Create(ctx context.Context, params CreateParams) (*Project, error)
	List(ctx context.Context, page Page) (*ProjectPage, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// initialSnapshot resolves the starting canvas of a new project.
func initialSnapshot(params CreateParams) (document.Snapshot, error) {
	if !params.Snapshot.IsZero() {
		return params.Snapshot, nil
	}
	w, h := params.Width, params.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return document.NewSnapshot(document.NewCanvas(w, h, "#ffffff"))
}

func projectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled design"
	}
	return name
}
