// Package cli is the bookhub command tree. One App holds the session (token
// store, API client, cache and services) shared by every command, including
// the commands run from an interactive shell.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"bookhub/internal/auth"
	"bookhub/internal/author"
	"bookhub/internal/book"
	"bookhub/internal/catalog"
	"bookhub/internal/comment"
	"bookhub/internal/config"
	"bookhub/internal/favorite"
	"bookhub/internal/platform/apiclient"
	"bookhub/internal/platform/logging"
	"bookhub/internal/platform/metrics"
	"bookhub/internal/rating"
	"bookhub/internal/recommendation"
	"bookhub/internal/subject"
)

type App struct {
	// ConfigPath is the --config flag; empty means the default search.
	ConfigPath string
	// Format is the --output flag.
	Format string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	cfg     *config.Config
	metrics *metrics.Collectors
	cache   *catalog.Cache
	store   *auth.Store
	client  *apiclient.Client

	auth            *auth.Service
	books           *book.Service
	authors         *author.Service
	subjects        *subject.Service
	ratings         *rating.Service
	favorites       *favorite.Service
	recommendations *recommendation.Service
	comments        *comment.Service

	mu      sync.Mutex
	threads map[string]*comment.Thread
	reader  *bufio.Reader
	inShell bool
	// sessionEnded is set when the server rejected the stored token, possibly
	// from several request goroutines at once.
	sessionEnded atomic.Bool
}

// NewApp returns an App on the process stdio. Services are built by Open.
func NewApp() *App {
	return &App{Format: formatTable, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Open loads the configuration and wires the session. Later calls are no-ops.
func (a *App) Open() error {
	if a.client != nil {
		return nil
	}
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.Err})
	a.Wire(cfg, auth.NewStore(cfg.Storage.Path))
	logging.Debug().Str("api", a.client.BaseURL()).Str("storage", cfg.Storage.Path).Msg("session opened")
	return nil
}

// Wire builds the API client and the services on cfg and store.
func (a *App) Wire(cfg *config.Config, store *auth.Store) {
	a.cfg = cfg
	a.store = store
	a.metrics = metrics.New()
	a.cache = catalog.New(a.metrics)
	a.client = apiclient.New(apiclient.Options{
		BaseURL:         cfg.API.URL,
		Timeout:         cfg.API.Timeout,
		RPS:             cfg.API.RateLimitRPS,
		MaxRetries:      cfg.API.MaxRetries,
		BreakerFailures: cfg.API.BreakerFailures,
		BreakerTimeout:  cfg.API.BreakerTimeout,
		Tokens:          store,
		Metrics:         a.metrics,
		OnUnauthorized: func() {
			store.Clear()
			a.sessionEnded.Store(true)
		},
	})

	a.auth = auth.NewService(auth.NewAPIRepo(a.client), store)
	a.ratings = rating.NewService(rating.NewAPIRepo(a.client))
	a.books = book.NewService(book.NewAPIRepo(a.client), a.cache, a.ratings, book.Options{
		BootstrapLimit:      cfg.Catalog.BootstrapLimit,
		FeaturedLimit:       cfg.Featured.Limit,
		FeaturedConcurrency: cfg.Featured.Concurrency,
	})
	a.authors = author.NewService(author.NewAPIRepo(a.client), a.cache, a.books)
	a.subjects = subject.NewService(subject.NewAPIRepo(a.client))
	a.favorites = favorite.NewService(favorite.NewAPIRepo(a.client), store)
	a.recommendations = recommendation.NewService(recommendation.NewAPIRepo(a.client), store)
	a.comments = comment.NewService(comment.NewAPIRepo(a.client), cfg.Comments.ReconcileDelay)
	a.threads = map[string]*comment.Thread{}
}

// thread returns the session's comment thread for bookID. fresh is true when
// the thread was created, and loaded, by this call.
func (a *App) thread(ctx context.Context, bookID string) (t *comment.Thread, fresh bool) {
	a.mu.Lock()
	t, ok := a.threads[bookID]
	if !ok {
		t = a.comments.Thread(bookID)
		a.threads[bookID] = t
	}
	a.mu.Unlock()
	if !ok {
		t.Load(ctx)
	}
	return t, !ok
}

// forgetThreads drops vote state that belonged to the previous user.
func (a *App) forgetThreads() {
	a.mu.Lock()
	a.threads = map[string]*comment.Thread{}
	a.mu.Unlock()
}

func (a *App) lines() *bufio.Reader {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	return a.reader
}

// maxPageSize is the largest limit the books endpoints accept.
const maxPageSize = 100

func (a *App) pageSize(flag int) (int, error) {
	if flag > maxPageSize {
		return 0, fmt.Errorf("page size %d is above the maximum of %d", flag, maxPageSize)
	}
	if flag > 0 {
		return flag, nil
	}
	return a.cfg.Pager.PageSize, nil
}
