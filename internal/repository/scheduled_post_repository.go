package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

// TransitionFields are the column updates that may accompany a status
// transition. Everything outside Transition leaves status columns alone.
type TransitionFields struct {
	PlatformPostID string
	ErrorMessage   string
	PublishAt      *time.Time
	IncrementRetry bool
}

type ScheduledPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	CheckByOwnerID(ctx context.Context, postID, ownerID int64) (bool, error)
	List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error)
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*models.ScheduledPost, error)
	Transition(ctx context.Context, id int64, from []string, to string, fields TransitionFields) (bool, error)
	CountByStatus(ctx context.Context, ownerID int64) (map[string]int64, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, owner_id, channel_id, platform, caption, publish_at, status, platform_post_id, error_message, retry_count, created_at, updated_at`

func (r *scheduledPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (owner_id, channel_id, platform, caption, publish_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.OwnerID, post.ChannelID, post.Platform, post.Caption, post.PublishAt, post.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.OwnerID, post.ChannelID, post.Platform, post.Caption, post.PublishAt, post.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanScheduledPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *scheduledPostRepository) CheckByOwnerID(ctx context.Context, postID, ownerID int64) (bool, error) {
	query := `SELECT 1 FROM scheduled_posts WHERE id = $1 AND owner_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, ownerID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *scheduledPostRepository) List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error) {
	query := `
		SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE owner_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = 0 OR channel_id = $3)
		  AND ($4 = '' OR platform = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, f.Status, f.ChannelID, f.Platform, f.Limit, f.Offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanScheduledPosts(rows)
}

func (r *scheduledPostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	query := `
		SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND publish_at <= $2
		ORDER BY publish_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusQueued, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanScheduledPosts(rows)
}

func (r *scheduledPostRepository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*models.ScheduledPost, error) {
	query := `
		SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPublishing, olderThan, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanScheduledPosts(rows)
}

// Transition is the sole mutation path for status. The update succeeds only
// if the current status is in from; a false return means another actor moved
// the post first. error_message is kept only when entering failed.
func (r *scheduledPostRepository) Transition(ctx context.Context, id int64, from []string, to string, fields TransitionFields) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
		    platform_post_id = CASE WHEN $2 <> '' THEN $2 ELSE platform_post_id END,
		    error_message = CASE WHEN $1 = 'failed' THEN $3 ELSE '' END,
		    publish_at = COALESCE($4, publish_at),
		    retry_count = retry_count + $5,
		    updated_at = NOW()
		WHERE id = $6 AND status = ANY($7)
	`

	increment := 0
	if fields.IncrementRetry {
		increment = 1
	}

	var publishAt interface{}
	if fields.PublishAt != nil {
		publishAt = *fields.PublishAt
	}

	result, err := r.db.ExecContext(ctx, query, to, fields.PlatformPostID, fields.ErrorMessage, publishAt, increment, id, pq.Array(from))
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected == 1, nil
}

func (r *scheduledPostRepository) CountByStatus(ctx context.Context, ownerID int64) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM scheduled_posts WHERE owner_id = $1 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		counts[status] = count
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScheduledPost(row rowScanner) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := row.Scan(
		&post.ID,
		&post.OwnerID,
		&post.ChannelID,
		&post.Platform,
		&post.Caption,
		&post.PublishAt,
		&post.Status,
		&post.PlatformPostID,
		&post.ErrorMessage,
		&post.RetryCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func scanScheduledPosts(rows *sql.Rows) ([]*models.ScheduledPost, error) {
	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
