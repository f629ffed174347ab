package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookworm/bookworm-go/internal/model"
	"github.com/bookworm/bookworm-go/internal/repository"
	"github.com/bookworm/bookworm-go/internal/storage"
	"github.com/bookworm/bookworm-go/internal/validate"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotOwner     = errors.New("not authorized to delete this book")
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// BookStore is the persistence contract the book service depends on.
// *repository.BookRepository is the production implementation.
type BookStore interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	ListPage(ctx context.Context, limit, offset int) ([]model.Book, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Book, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// BookService handles book creation, the paginated feed, and deletion.
type BookService struct {
	store  BookStore
	images storage.ImageStorage
}

// NewBookService creates a new BookService.
func NewBookService(store BookStore, images storage.ImageStorage) *BookService {
	return &BookService{store: store, images: images}
}

// Create validates the request, uploads the image, and persists the book.
// The author projection is taken from the requesting user.
func (s *BookService) Create(ctx context.Context, user *model.User, req model.CreateBookRequest) (model.BookResponse, error) {
	if err := validate.Struct(req); err != nil {
		return model.BookResponse{}, validationErr(err)
	}

	img, err := storage.DecodeDataURL(req.Image)
	if err != nil {
		return model.BookResponse{}, validationErr(err)
	}

	imageURL, imageKey, err := s.images.Upload(ctx, img)
	if err != nil {
		return model.BookResponse{}, err
	}

	book := &model.Book{
		UserID:             user.ID,
		Title:              req.Title,
		Caption:            req.Caption,
		Rating:             req.Rating,
		ImageURL:           imageURL,
		ImageKey:           imageKey,
		AuthorUsername:     user.Username,
		AuthorProfileImage: user.ProfileImage,
	}

	if err := s.store.Create(ctx, book); err != nil {
		// The row never existed; remove the orphaned upload.
		if delErr := s.images.Delete(ctx, imageKey); delErr != nil {
			slog.Warn("failed to clean up image after insert error", "key", imageKey, "error", delErr)
		}
		return model.BookResponse{}, err
	}
	book.CreatedAt = time.Now().UTC()

	return book.PublicView(), nil
}

// Feed returns one page of the feed, newest first, with pagination
// metadata. Pages past the last one return an empty list with the
// metadata intact.
func (s *BookService) Feed(ctx context.Context, page, limit int) (model.FeedResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return model.FeedResponse{}, err
	}

	books, err := s.store.ListPage(ctx, limit, (page-1)*limit)
	if err != nil {
		return model.FeedResponse{}, err
	}

	items := make([]model.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, books[i].PublicView())
	}

	return model.FeedResponse{
		Books:       items,
		CurrentPage: page,
		TotalBooks:  total,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

// ListByUser returns all books owned by the given user, newest first.
func (s *BookService) ListByUser(ctx context.Context, userID int64) ([]model.BookResponse, error) {
	books, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]model.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, books[i].PublicView())
	}
	return items, nil
}

// Delete removes a book owned by the requester. The hosted image is
// deleted best-effort: a storage failure is logged and the row is
// removed regardless.
func (s *BookService) Delete(ctx context.Context, requesterID, bookID int64) error {
	book, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if book.UserID != requesterID {
		return ErrNotOwner
	}

	if book.ImageKey != "" {
		if err := s.images.Delete(ctx, book.ImageKey); err != nil {
			slog.Warn("failed to delete hosted image", "key", book.ImageKey, "book_id", bookID, "error", err)
		}
	}

	if err := s.store.Delete(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	return nil
}
