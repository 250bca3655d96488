package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, ownerID int64, pc *transfer.PostCreation) (*models.ScheduledPost, error)
	Info(ctx context.Context, ownerID, postID int64) (*transfer.PostDetail, error)
	List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error)
	Cancel(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error)
	Promote(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error)
	Statistics(ctx context.Context, ownerID int64) (*transfer.PostStatistics, error)
}

type postService struct {
	db *sql.DB
	pr repository.ScheduledPostRepository
	pm repository.PostMediaRepository
	ru repository.PostRunRepository
	ac repository.SocialAccountRepository
}

func NewPostService(
	db *sql.DB,
	pr repository.ScheduledPostRepository,
	pm repository.PostMediaRepository,
	ru repository.PostRunRepository,
	ac repository.SocialAccountRepository) PostService {
	return &postService{
		db: db,
		pr: pr,
		pm: pm,
		ru: ru,
		ac: ac,
	}
}

func (s *postService) Create(ctx context.Context, ownerID int64, pc *transfer.PostCreation) (*models.ScheduledPost, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if pc.Text == "" {
		return nil, fmt.Errorf("%w: caption cannot be empty", ErrInvalidContent)
	}

	if !models.IsSupportedPlatform(pc.Platform) {
		return nil, fmt.Errorf("%w: unsupported platform %q", ErrInvalidChannel, pc.Platform)
	}

	account, err := s.ac.GetOwned(ctx, pc.SocialAccountID, ownerID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Platform != pc.Platform {
		return nil, ErrInvalidChannel
	}

	publishAt, err := NormalizeScheduleTime(pc.ScheduledAt, pc.Timezone, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	for _, m := range pc.Media {
		if m.URL == "" || !models.IsValidMediaKind(m.Kind) {
			return nil, fmt.Errorf("%w: bad media reference of kind %q", ErrInvalidContent, m.Kind)
		}
	}

	status := models.PostStatusQueued
	if pc.Draft {
		status = models.PostStatusDraft
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.ScheduledPost{
		OwnerID:   ownerID,
		ChannelID: account.ID,
		Platform:  pc.Platform,
		Caption:   pc.Text,
		PublishAt: publishAt,
		Status:    status,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	for i, m := range pc.Media {
		media := models.PostMedia{
			PostID:       postID,
			URL:          m.URL,
			Kind:         m.Kind,
			DisplayOrder: i,
		}
		if err = s.pm.Create(ctx, tx, &media); err != nil {
			return nil, fmt.Errorf("error saving media reference: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	post.ID = postID
	return &post, nil
}

func (s *postService) Info(ctx context.Context, ownerID, postID int64) (*transfer.PostDetail, error) {
	post, err := s.owned(ctx, ownerID, postID)
	if err != nil {
		return nil, err
	}

	media, err := s.pm.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	runs, err := s.ru.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &transfer.PostDetail{Post: post, Media: media, Runs: runs}, nil
}

func (s *postService) List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	posts, err := s.pr.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Cancel(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error) {
	if _, err := s.owned(ctx, ownerID, postID); err != nil {
		return nil, err
	}

	ok, err := s.pr.Transition(ctx, postID,
		[]string{models.PostStatusDraft, models.PostStatusQueued},
		models.PostStatusCancelled,
		repository.TransitionFields{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCancellable
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *postService) Promote(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error) {
	if _, err := s.owned(ctx, ownerID, postID); err != nil {
		return nil, err
	}

	ok, err := s.pr.Transition(ctx, postID,
		[]string{models.PostStatusDraft},
		models.PostStatusQueued,
		repository.TransitionFields{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleTransition
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *postService) Statistics(ctx context.Context, ownerID int64) (*transfer.PostStatistics, error) {
	counts, err := s.pr.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := transfer.PostStatistics{ByStatus: counts}
	for _, count := range counts {
		stats.Total += count
	}
	return &stats, nil
}

func (s *postService) owned(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error) {
	if ownerID == 0 || postID == 0 {
		return nil, ErrPostNotFound
	}

	isOwner, err := s.pr.CheckByOwnerID(ctx, postID, ownerID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	return post, nil
}
