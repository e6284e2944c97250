package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"github.com/osteovet/clinic-backend/pkg/slug"
	"gorm.io/gorm"
)

const notFoundMessage = "post not found"

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	db  dbClient
	now func() time.Time
}

func NewService(client dbClient) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &Service{db: client, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ListPublished is the public listing.
func (s *Service) ListPublished(ctx context.Context, params pagination.Params) (pagination.Page[PostDTO], error) {
	return s.list(ctx, true, params)
}

// ListAll includes drafts.
func (s *Service) ListAll(ctx context.Context, params pagination.Params) (pagination.Page[PostDTO], error) {
	return s.list(ctx, false, params)
}

func (s *Service) list(ctx context.Context, publishedOnly bool, params pagination.Params) (pagination.Page[PostDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := NewRepository(s.db.DB()).List(ctx, publishedOnly, params)
	if err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}
	dtos := make([]PostDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Paginate(dtos, params.Limit, func(p PostDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

// GetPublished looks a post up by slug; drafts are not found.
func (s *Service) GetPublished(ctx context.Context, postSlug string) (*PostDTO, error) {
	row, err := NewRepository(s.db.DB()).FindPublishedBySlug(ctx, strings.ToLower(strings.TrimSpace(postSlug)))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, req CreatePostRequest) (*PostDTO, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}
	postSlug, err := resolveSlug(req.Slug, title)
	if err != nil {
		return nil, err
	}

	row := models.BlogPost{
		Slug:      postSlug,
		Title:     title,
		TitleFR:   strings.TrimSpace(req.TitleFR),
		Content:   content,
		ContentFR: strings.TrimSpace(req.ContentFR),
		Excerpt:   req.Excerpt,
		Published: req.Published,
		AuthorID:  scope.UserID,
	}
	if req.Published {
		now := s.now()
		row.PublishedAt = &now
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		if err := ensureSlugFree(ctx, r, postSlug, nil); err != nil {
			return err
		}
		if err := r.Create(ctx, &row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return slugConflict(postSlug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create post")
		}
		if row.Published {
			return auditPublish(ctx, tx, scope, &row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req UpdatePostRequest) (*PostDTO, error) {
	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		fields["title"] = title
	}
	if req.TitleFR != nil {
		fields["title_fr"] = strings.TrimSpace(*req.TitleFR)
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "content must not be empty")
		}
		fields["content"] = content
	}
	if req.ContentFR != nil {
		fields["content_fr"] = strings.TrimSpace(*req.ContentFR)
	}
	if req.Excerpt.Set {
		fields["excerpt"] = req.Excerpt.Value
	}
	var newSlug string
	if req.Slug != nil {
		var err error
		if newSlug, err = resolveSlug(*req.Slug, ""); err != nil {
			return nil, err
		}
		fields["slug"] = newSlug
	}

	var out PostDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		if _, err := load(ctx, r, id); err != nil {
			return err
		}
		if newSlug != "" {
			if err := ensureSlugFree(ctx, r, newSlug, &id); err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				if db.IsUniqueViolation(err, "") {
					return slugConflict(newSlug)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
			}
		}
		updated, err := load(ctx, r, id)
		if err != nil {
			return err
		}
		out = FromModel(*updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPublished publishes or unpublishes a post. published_at is kept from the
// first publication.
func (s *Service) SetPublished(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, published bool) (*PostDTO, error) {
	var out PostDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		current, err := load(ctx, r, id)
		if err != nil {
			return err
		}
		if current.Published != published {
			now := s.now()
			fields := map[string]any{"published": published, "updated_at": now}
			if published && current.PublishedAt == nil {
				fields["published_at"] = now
			}
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
			}
			if current, err = load(ctx, r, id); err != nil {
				return err
			}
			if published {
				if err := auditPublish(ctx, tx, scope, current); err != nil {
					return err
				}
			}
		}
		out = FromModel(*current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := NewRepository(s.db.DB()).Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

// resolveSlug normalises an explicit slug, or derives one from title.
func resolveSlug(raw, title string) (string, error) {
	raw = strings.TrimSpace(raw)
	source := raw
	if source == "" {
		source = title
	}
	out := slug.Make(source)
	if out == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must contain at least one letter or digit")
	}
	return out, nil
}

func ensureSlugFree(ctx context.Context, r *Repository, postSlug string, except *uuid.UUID) error {
	taken, err := r.SlugTaken(ctx, postSlug, except)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
	}
	if taken {
		return slugConflict(postSlug)
	}
	return nil
}

func slugConflict(postSlug string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "a post with this slug already exists").
		WithDetails(map[string]string{"slug": postSlug})
}

func auditPublish(ctx context.Context, tx *gorm.DB, scope pkgauth.Scope, p *models.BlogPost) error {
	id := p.ID
	if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
		UserID:   &scope.UserID,
		Action:   enums.AuditActionBlogPostPublished,
		Entity:   "blog_post",
		EntityID: &id,
		Meta:     map[string]any{"slug": p.Slug},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
	}
	return nil
}

func load(ctx context.Context, r *Repository, id uuid.UUID) (*models.BlogPost, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	return row, nil
}
