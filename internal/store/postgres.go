package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kudos/internal/feed"
	"kudos/internal/metrics"
	"kudos/internal/models"
)

// Postgres handles PostgreSQL database operations.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping checks the database connection.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func observe(query string, start time.Time) {
	metrics.PostgresLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// GetProfile retrieves a user's profile by ID.
func (s *Postgres) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	defer observe("get_profile", time.Now())

	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, profile_picture
		FROM users WHERE id = $1
	`, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.ProfilePicture)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// OtherProfiles lists every user except id, by first name.
func (s *Postgres) OtherProfiles(ctx context.Context, id uuid.UUID) ([]models.Profile, error) {
	defer observe("other_profiles", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, profile_picture
		FROM users WHERE id <> $1
		ORDER BY first_name ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.ProfilePicture); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetProfilePicture stores a new avatar locator for the user.
func (s *Postgres) SetProfilePicture(ctx context.Context, id uuid.UUID, locator string) error {
	defer observe("set_profile_picture", time.Now())

	res, err := s.db.ExecContext(ctx, `UPDATE users SET profile_picture = $2 WHERE id = $1`, id, locator)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const kudoColumns = `
	k.id, k.message, k.emoji, k.background_color, k.text_color, k.recipient_id, k.created_at,
	a.id, a.first_name, a.last_name, a.profile_picture`

func scanKudo(row interface{ Scan(...any) error }, extra ...any) (models.Kudo, error) {
	var k models.Kudo
	dest := []any{
		&k.ID, &k.Message, &k.Style.Emoji, &k.Style.BackgroundColor, &k.Style.TextColor, &k.RecipientID, &k.CreatedAt,
		&k.Author.ID, &k.Author.FirstName, &k.Author.LastName, &k.Author.ProfilePicture,
	}
	err := row.Scan(append(dest, extra...)...)
	return k, err
}

// buildFeedQuery assembles the SELECT for FilteredKudos.
func buildFeedQuery(recipientID uuid.UUID, sort feed.Sort, filter feed.Predicate) (string, []any, error) {
	args := []any{recipientID}
	where, args, err := compilePredicate(filter, args)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(kudoColumns)
	b.WriteString("\nFROM kudos k JOIN users a ON a.id = k.author_id\nWHERE k.recipient_id = $1")
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
	}
	if ob := orderBy(sort); ob != "" {
		b.WriteString("\n")
		b.WriteString(ob)
	}
	return b.String(), args, nil
}

// FilteredKudos returns the kudos received by recipientID that match filter,
// ordered by sort.
func (s *Postgres) FilteredKudos(ctx context.Context, recipientID uuid.UUID, sort feed.Sort, filter feed.Predicate) ([]models.Kudo, error) {
	defer observe("filtered_kudos", time.Now())

	query, args, err := buildFeedQuery(recipientID, sort, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Kudo{}
	for rows.Next() {
		k, err := scanKudo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// RecentKudos returns the newest kudos across all users, with recipients.
func (s *Postgres) RecentKudos(ctx context.Context, limit int) ([]models.Kudo, error) {
	defer observe("recent_kudos", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT`+kudoColumns+`,
			r.id, r.first_name, r.last_name, r.profile_picture
		FROM kudos k
		JOIN users a ON a.id = k.author_id
		JOIN users r ON r.id = k.recipient_id
		ORDER BY k.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Kudo{}
	for rows.Next() {
		r := &models.Profile{}
		k, err := scanKudo(rows, &r.ID, &r.FirstName, &r.LastName, &r.ProfilePicture)
		if err != nil {
			return nil, err
		}
		k.Recipient = r
		out = append(out, k)
	}
	return out, rows.Err()
}

// CreateKudo inserts a kudo and returns it joined with its author.
func (s *Postgres) CreateKudo(ctx context.Context, in models.NewKudo) (*models.Kudo, error) {
	defer observe("create_kudo", time.Now())

	author, err := s.GetProfile(ctx, in.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	if _, err := s.GetProfile(ctx, in.RecipientID); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	k := models.Kudo{
		ID:          uuid.New(),
		Message:     in.Message,
		Style:       in.Style,
		Author:      *author,
		RecipientID: in.RecipientID,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO kudos (id, message, author_id, recipient_id, emoji, background_color, text_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, k.ID, k.Message, in.AuthorID, in.RecipientID, k.Style.Emoji, k.Style.BackgroundColor, k.Style.TextColor,
	).Scan(&k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
