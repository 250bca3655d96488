package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postqueue/internal/models"
)

type PostRunRepository interface {
	Begin(ctx context.Context, run *models.PostRun) (int64, error)
	Finish(ctx context.Context, id int64, status, errMsg string) error
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostRun, error)
}

type postRunRepository struct {
	db *sql.DB
}

func NewPostRunRepository(db *sql.DB) PostRunRepository {
	return &postRunRepository{db: db}
}

func (r *postRunRepository) Begin(ctx context.Context, run *models.PostRun) (int64, error) {
	query := `
		INSERT INTO post_runs (scheduled_post_id, attempt, started_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, run.ScheduledPostID, run.Attempt, run.StartedAt, models.RunStatusRunning).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// Finish closes a run exactly once; the finished_at guard keeps finished
// rows immutable.
func (r *postRunRepository) Finish(ctx context.Context, id int64, status, errMsg string) error {
	query := `
		UPDATE post_runs
		SET status = $1, error = $2, finished_at = NOW()
		WHERE id = $3 AND finished_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, status, errMsg, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRunRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostRun, error) {
	query := `
		SELECT id, scheduled_post_id, attempt, started_at, finished_at, status, error
		FROM post_runs
		WHERE scheduled_post_id = $1
		ORDER BY attempt ASC
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var runs []*models.PostRun
	for rows.Next() {
		var run models.PostRun
		if err := rows.Scan(&run.ID, &run.ScheduledPostID, &run.Attempt, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Error); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		runs = append(runs, &run)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return runs, nil
}
