package model

import "time"

// Book represents a shared book review in the database.
type Book struct {
	ID        int64
	UserID    int64
	Title     string
	Caption   string
	Rating    int
	ImageURL  string
	ImageKey  string
	CreatedAt time.Time

	// Denormalized author fields, populated only by feed queries.
	AuthorUsername     string
	AuthorProfileImage string
}

// CreateBookRequest represents a book creation request. Image is a
// base64 data URL ("data:image/jpeg;base64,...") as sent by the mobile app.
type CreateBookRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Caption string `json:"caption" validate:"required,max=2000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Image   string `json:"image" validate:"required"`
}

// BookAuthor is the denormalized owner projection attached to feed items.
type BookAuthor struct {
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Caption   string     `json:"caption"`
	Rating    int        `json:"rating"`
	Image     string     `json:"image"`
	User      BookAuthor `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
}

// FeedResponse is one page of the book feed plus pagination metadata.
type FeedResponse struct {
	Books       []BookResponse `json:"books"`
	CurrentPage int            `json:"currentPage"`
	TotalBooks  int            `json:"totalBooks"`
	TotalPages  int            `json:"totalPages"`
}

// PublicView converts a Book to its API representation.
func (b *Book) PublicView() BookResponse {
	return BookResponse{
		ID:      b.ID,
		Title:   b.Title,
		Caption: b.Caption,
		Rating:  b.Rating,
		Image:   b.ImageURL,
		User: BookAuthor{
			Username:     b.AuthorUsername,
			ProfileImage: b.AuthorProfileImage,
		},
		CreatedAt: b.CreatedAt,
	}
}
