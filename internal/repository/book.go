package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookworm/bookworm-go/internal/model"
)

var ErrBookNotFound = errors.New("book not found")

// feedSelect joins the author onto every book row. Ordering is
// newest-first with id as the tie-break, so repeated reads of an
// unchanged table always return the same sequence.
const feedSelect = `
	SELECT b.id, b.user_id, b.title, b.caption, b.rating, b.image_url, b.image_key, b.created_at,
	       u.username, u.profile_image
	FROM books b
	JOIN users u ON u.id = b.user_id`

const feedOrder = ` ORDER BY b.created_at DESC, b.id DESC`

// BookRepository handles book persistence operations.
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book and sets the generated ID on the book struct.
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `INSERT INTO books (user_id, title, caption, rating, image_url, image_key) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		book.UserID, book.Title, book.Caption, book.Rating, book.ImageURL, book.ImageKey,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	book.ID = id
	return nil
}

// GetByID retrieves a single book with its author projection.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	book := &model.Book{}
	err := r.db.QueryRowContext(ctx, feedSelect+` WHERE b.id = ?`, id).Scan(
		&book.ID, &book.UserID, &book.Title, &book.Caption, &book.Rating,
		&book.ImageURL, &book.ImageKey, &book.CreatedAt,
		&book.AuthorUsername, &book.AuthorProfileImage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	return book, nil
}

// ListPage retrieves one window of the feed, newest first.
func (r *BookRepository) ListPage(ctx context.Context, limit, offset int) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, feedSelect+feedOrder+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBooks(rows)
}

// ListByUser retrieves all books owned by a user, newest first.
func (r *BookRepository) ListByUser(ctx context.Context, userID int64) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, feedSelect+` WHERE b.user_id = ?`+feedOrder, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBooks(rows)
}

// Count returns the total number of books in the feed.
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total)
	return total, err
}

// Delete removes a book row.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookNotFound
	}

	return nil
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Title, &b.Caption, &b.Rating,
			&b.ImageURL, &b.ImageKey, &b.CreatedAt,
			&b.AuthorUsername, &b.AuthorProfileImage,
		); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}
