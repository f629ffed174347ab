// Command bookworm is a small CLI client for the Bookworm API. It keeps
// its session in the user config dir and mirrors what the mobile app
// does: register/login, browse the paginated feed, post and delete
// book reviews.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bookworm/bookworm-go/internal/client/api"
	"github.com/bookworm/bookworm-go/internal/client/feed"
	"github.com/bookworm/bookworm-go/internal/client/session"
	"github.com/bookworm/bookworm-go/internal/model"
)

const usage = `usage: bookworm [-server URL] <command> [flags]

commands:
  register  -email -username -password   create an account and log in
  login     -email -password             log in
  logout                                 drop the stored session
  me                                     show the logged-in user
  feed      [-pages N] [-limit N]        browse the shared feed
  post      -title -caption -rating -image FILE   share a book review
  mine                                   list your own books
  delete    -id N                        delete one of your books
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("bookworm", flag.ExitOnError)
	server := global.String("server", "http://localhost:3001", "Bookworm server base URL")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	global.Parse(args)

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	client := api.New(*server)
	store := session.New(client, session.NewFileStorage(sessionPath()))
	if err := store.CheckAuth(); err != nil {
		return err
	}

	ctx := context.Background()
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "register":
		return runRegister(ctx, store, rest)
	case "login":
		return runLogin(ctx, store, rest)
	case "logout":
		return store.Logout()
	case "me":
		return runMe(ctx, client)
	case "feed":
		return runFeed(ctx, client, rest)
	case "post":
		return runPost(ctx, client, rest)
	case "mine":
		return runMine(ctx, client)
	case "delete":
		return runDelete(ctx, client, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func sessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "bookworm", "session.json")
}

func runRegister(ctx context.Context, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	username := fs.String("username", "", "username (at least 3 characters)")
	password := fs.String("password", "", "password (at least 6 characters)")
	fs.Parse(args)

	err := store.Register(ctx, model.CreateUserRequest{
		Email:    *email,
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered and logged in as %s\n", store.User().Username)
	return nil
}

func runLogin(ctx context.Context, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	err := store.Login(ctx, model.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", store.User().Username)
	return nil
}

func runMe(ctx context.Context, client *api.Client) error {
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> (joined %s)\n", user.Username, user.Email, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func runFeed(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	pages := fs.Int("pages", 1, "number of pages to load")
	limit := fs.Int("limit", 5, "books per page")
	fs.Parse(args)

	cache := feed.New(client, *limit)
	for i := 0; i < *pages && (i == 0 || cache.HasMore()); i++ {
		if err := cache.LoadMore(ctx); err != nil {
			return err
		}
	}

	for _, b := range cache.Books() {
		printBook(b)
	}
	if cache.HasMore() {
		fmt.Println("... more available, re-run with a higher -pages")
	}
	return nil
}

func runPost(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "book title")
	caption := fs.String("caption", "", "review caption")
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	image := fs.String("image", "", "path to a cover image (jpeg/png/webp)")
	fs.Parse(args)

	dataURL, err := fileToDataURL(*image)
	if err != nil {
		return err
	}

	book, err := client.CreateBook(ctx, model.CreateBookRequest{
		Title:   *title,
		Caption: *caption,
		Rating:  *rating,
		Image:   dataURL,
	})
	if err != nil {
		return err
	}
	fmt.Printf("posted book %d: %s\n", book.ID, book.Title)
	return nil
}

func runMine(ctx context.Context, client *api.Client) error {
	books, err := client.MyBooks(ctx)
	if err != nil {
		return err
	}
	for _, b := range books {
		printBook(b)
	}
	return nil
}

func runDelete(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "book id")
	fs.Parse(args)

	if err := client.DeleteBook(ctx, *id); err != nil {
		return err
	}
	fmt.Println("book deleted")
	return nil
}

func printBook(b model.BookResponse) {
	fmt.Printf("#%d %q %s by @%s: %s\n",
		b.ID, b.Title, stars(b.Rating), b.User.Username, b.Caption)
}

func stars(rating int) string {
	s := ""
	for i := 1; i <= 5; i++ {
		if i <= rating {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}

// fileToDataURL reads an image file and encodes it the way the mobile
// app sends uploads: a base64 data URL with a sniffed media type.
func fileToDataURL(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("an -image file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	mediaType := http.DetectContentType(raw)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
