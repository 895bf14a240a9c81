// Package testutil runs an in-memory stand-in for the remote book API.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bookhub/internal/entity"
	"bookhub/internal/platform/apiclient"

	"github.com/goccy/go-json"
)

// StaticToken is a fixed bearer token source.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Comment mirrors the wire shape of a comment.
type Comment struct {
	ID        int64     `json:"comment_id"`
	BookID    string    `json:"-"`
	ParentID  int64     `json:"-"`
	Content   string    `json:"content"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type account struct {
	user     User
	password string
}

// FakeAPI keeps books, authors, users, ratings, comments, votes and favorites.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	books     []entity.Book
	authors   map[string]map[string]any
	accounts  map[string]*account
	ratings   map[string]map[string]int // work key -> username -> score
	comments  []*Comment
	votes     map[int64]map[string]int // comment id -> username -> direction
	favorites map[string][]string      // username -> work keys
	nextID    int64
	failures  map[string]int
	strict    []string

	requests int64
}

// NewFakeAPI starts a server that is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		authors:   map[string]map[string]any{},
		accounts:  map[string]*account{},
		ratings:   map[string]map[string]int{},
		votes:     map[int64]map[string]int{},
		favorites: map[string][]string{},
		failures:  map[string]int{},
		nextID:    1,
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// Client returns an API client for the fake, authenticated with token when non-empty.
func (f *FakeAPI) Client(token string) *apiclient.Client {
	return apiclient.New(apiclient.Options{
		BaseURL: f.Server.URL,
		Tokens:  StaticToken(token),
		RPS:     1000,
		Backoff: time.Millisecond,
	})
}

// Requests is the number of requests served so far.
func (f *FakeAPI) Requests() int64 {
	return atomic.LoadInt64(&f.requests)
}

// AddBooks appends books to the catalog in the given order.
func (f *FakeAPI) AddBooks(books ...entity.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = append(f.books, books...)
}

// AddAuthor registers an author detail payload as the API would return it.
func (f *FakeAPI) AddAuthor(key string, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[key] = payload
}

// AddUser creates an account; its token is "token-<username>".
func (f *FakeAPI) AddUser(username, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.accounts) + 1)
	f.accounts[username] = &account{user: User{ID: id, Username: username}, password: password}
	return "token-" + username
}

// AddComment stores a comment or, with parentID set, a reply.
func (f *FakeAPI) AddComment(bookID string, parentID int64, username, content string, at time.Time) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addComment(bookID, parentID, username, content, at)
}

func (f *FakeAPI) addComment(bookID string, parentID int64, username, content string, at time.Time) int64 {
	c := &Comment{ID: f.nextID, BookID: bookID, ParentID: parentID, Content: content, CreatedAt: at}
	if a, ok := f.accounts[username]; ok {
		u := a.user
		c.User = &u
	}
	f.nextID++
	f.comments = append(f.comments, c)
	return c.ID
}

// FailNext makes the next n requests whose "METHOD path" starts with prefix
// return status 500.
func (f *FakeAPI) FailNext(prefix string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[prefix] = n
}

// RejectUnknownTokens makes requests whose "METHOD path" starts with prefix
// answer 401 when they carry a bearer token that names no account.
func (f *FakeAPI) RejectUnknownTokens(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strict = append(f.strict, prefix)
}

func (f *FakeAPI) rejects(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Header.Get("Authorization") == "" {
		return false
	}
	if _, ok := f.caller(r); ok {
		return false
	}
	route := r.Method + " " + r.URL.Path
	for _, prefix := range f.strict {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

// Votes returns the stored vote of username on a comment.
func (f *FakeAPI) Votes(commentID int64, username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votes[commentID][username]
}

func (f *FakeAPI) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /authentication/signin", f.signin)
	mux.HandleFunc("POST /authentication/signup", f.signup)
	mux.HandleFunc("GET /authentication/users/me", f.me)
	mux.HandleFunc("GET /books/", f.listBooks)
	mux.HandleFunc("GET /books/{key}", f.getBook)
	mux.HandleFunc("GET /authors/{key}", f.getAuthor)
	mux.HandleFunc("GET /authors/{key}/books", f.authorBooks)
	mux.HandleFunc("GET /subjects/{subject}", f.subjectBooks)
	mux.HandleFunc("POST /rating/{id}", f.rate)
	mux.HandleFunc("DELETE /rating/{id}", f.unrate)
	mux.HandleFunc("GET /rating/{id}/summary", f.ratingSummary)
	mux.HandleFunc("GET /comment/{id}", f.listComments)
	mux.HandleFunc("POST /comment/{id}", f.postComment)
	mux.HandleFunc("DELETE /comment/{id}", f.deleteComment)
	mux.HandleFunc("GET /comment/{id}/replies", f.listReplies)
	mux.HandleFunc("POST /comment/{id}/replies", f.postReply)
	mux.HandleFunc("GET /comment/{id}/like", f.likeCounts)
	mux.HandleFunc("POST /comment/{id}/like", f.vote)
	mux.HandleFunc("GET /favourite/favorites", f.listFavorites)
	mux.HandleFunc("POST /favourite/favorites/{id}", f.addFavorite)
	mux.HandleFunc("DELETE /favourite/favorites/{id}", f.removeFavorite)
	mux.HandleFunc("GET /recommendations/", f.recommendations)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		if f.shouldFail(r.Method + " " + r.URL.Path) {
			writeDetail(w, http.StatusInternalServerError, "injected failure")
			return
		}
		if f.rejects(r) {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) shouldFail(route string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for prefix, n := range f.failures {
		if n > 0 && strings.HasPrefix(route, prefix) {
			f.failures[prefix] = n - 1
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

// caller resolves the bearer token; ok is false for anonymous requests.
func (f *FakeAPI) caller(r *http.Request) (User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	name, found := strings.CutPrefix(tok, "token-")
	if !found {
		return User{}, false
	}
	a, ok := f.accounts[name]
	if !ok {
		return User{}, false
	}
	return a.user, true
}

func (f *FakeAPI) requireCaller(w http.ResponseWriter, r *http.Request) (User, bool) {
	u, ok := f.caller(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
	}
	return u, ok
}

func page(r *http.Request, n int) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 12
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

// listing strips detail-only fields the way the real listing endpoint does.
func listing(b entity.Book) entity.Book {
	b.ISBN = nil
	b.Publishers = nil
	return b
}

func (f *FakeAPI) signin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad form")
		return
	}
	a, ok := f.accounts[r.PostForm.Get("username")]
	if !ok || a.password != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": "token-" + a.user.Username, "token_type": "bearer"})
}

func (f *FakeAPI) signup(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad json")
		return
	}
	if len(body.Password) < 8 {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{
			"loc": []any{"body", "password"}, "msg": "String should have at least 8 characters", "type": "string_too_short.min_length",
		}})
		return
	}
	if _, exists := f.accounts[body.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	id := int64(len(f.accounts) + 1)
	f.accounts[body.Username] = &account{user: User{ID: id, Username: body.Username}, password: body.Password}
	writeJSON(w, http.StatusOK, f.accounts[body.Username].user)
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.requireCaller(w, r); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

func (f *FakeAPI) listBooks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	books := make([]entity.Book, 0, len(f.books))
	search := strings.ToLower(q.Get("search"))
	for _, b := range f.books {
		if search == "" || strings.Contains(strings.ToLower(b.Title), search) {
			books = append(books, listing(b))
		}
	}
	desc := q.Get("order") == "desc"
	switch q.Get("order_by") {
	case "views":
		sort.SliceStable(books, func(i, j int) bool {
			if desc {
				return books[i].Views > books[j].Views
			}
			return books[i].Views < books[j].Views
		})
	case "title":
		sort.SliceStable(books, func(i, j int) bool {
			if desc {
				return books[i].Title > books[j].Title
			}
			return books[i].Title < books[j].Title
		})
	}
	from, to := page(r, len(books))
	writeJSON(w, http.StatusOK, books[from:to])
}

func (f *FakeAPI) findBook(key string) (entity.Book, bool) {
	for _, b := range f.books {
		if b.WorkKey == key {
			return b, true
		}
	}
	return entity.Book{}, false
}

func (f *FakeAPI) getBook(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.findBook(r.PathValue("key"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Book not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (f *FakeAPI) getAuthor(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.authors[r.PathValue("key")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Author not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (f *FakeAPI) authorBooks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.PathValue("key")
	var books []entity.Book
	for _, b := range f.books {
		if b.Author != nil && b.Author.Key == key {
			books = append(books, listing(b))
		}
	}
	from, to := page(r, len(books))
	writeJSON(w, http.StatusOK, append([]entity.Book{}, books[from:to]...))
}

func (f *FakeAPI) subjectBooks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subject := r.PathValue("subject")
	var books []entity.Book
	for _, b := range f.books {
		if slices.Contains(b.Subjects, subject) {
			books = append(books, listing(b))
		}
	}
	from, to := page(r, len(books))
	writeJSON(w, http.StatusOK, append([]entity.Book{}, books[from:to]...))
}

func (f *FakeAPI) rate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Score < 1 || body.Score > 5 {
		writeDetail(w, http.StatusUnprocessableEntity, "Score must be between 1 and 5")
		return
	}
	id := r.PathValue("id")
	if f.ratings[id] == nil {
		f.ratings[id] = map[string]int{}
	}
	f.ratings[id][u.Username] = body.Score
	writeJSON(w, http.StatusOK, map[string]any{"book_id": id, "score": body.Score})
}

func (f *FakeAPI) unrate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, rated := f.ratings[id][u.Username]; !rated {
		writeDetail(w, http.StatusNotFound, "Rating not found")
		return
	}
	delete(f.ratings[id], u.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Rating deleted"})
}

func (f *FakeAPI) ratingSummary(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	summary := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	total, sum := 0, 0
	for _, s := range f.ratings[id] {
		summary[strconv.Itoa(s)]++
		total++
		sum += s
	}
	avg := 0.0
	if total > 0 {
		avg = float64(sum) / float64(total)
	}
	var userScore *int
	if u, ok := f.caller(r); ok {
		if s, rated := f.ratings[id][u.Username]; rated {
			userScore = &s
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"average_score": avg, "total_ratings": total, "summary": summary, "user_score": userScore,
	})
}

func (f *FakeAPI) listComments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	out := []*Comment{}
	for _, c := range f.comments {
		if c.BookID == id && c.ParentID == 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) postComment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Content is required")
		return
	}
	id := f.addComment(r.PathValue("id"), 0, u.Username, body.Content, time.Now())
	writeJSON(w, http.StatusOK, map[string]any{"comment_id": id, "message": "Comment created"})
}

func (f *FakeAPI) findComment(id string) (*Comment, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, false
	}
	for _, c := range f.comments {
		if c.ID == n {
			return c, true
		}
	}
	return nil, false
}

func (f *FakeAPI) deleteComment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	c, found := f.findComment(r.PathValue("id"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	if c.User == nil || c.User.Username != u.Username {
		writeDetail(w, http.StatusForbidden, "Not allowed to delete this comment")
		return
	}
	f.comments = slices.DeleteFunc(f.comments, func(x *Comment) bool { return x.ID == c.ID || x.ParentID == c.ID })
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func (f *FakeAPI) listReplies(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parent, found := f.findComment(r.PathValue("id"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	out := []*Comment{}
	for _, c := range f.comments {
		if c.ParentID == parent.ID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) postReply(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	parent, found := f.findComment(r.PathValue("id"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Content is required")
		return
	}
	id := f.addComment(parent.BookID, parent.ID, u.Username, body.Content, time.Now())
	writeJSON(w, http.StatusOK, map[string]any{"comment_id": id, "message": "Reply created"})
}

func (f *FakeAPI) counts(id int64) map[string]int {
	likes, dislikes := 0, 0
	for _, d := range f.votes[id] {
		switch d {
		case 1:
			likes++
		case -1:
			dislikes++
		}
	}
	return map[string]int{"likes_count": likes, "dislikes_count": dislikes}
}

func (f *FakeAPI) likeCounts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, found := f.findComment(r.PathValue("id"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	writeJSON(w, http.StatusOK, f.counts(c.ID))
}

func (f *FakeAPI) vote(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	c, found := f.findComment(r.PathValue("id"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	d, err := strconv.Atoi(r.URL.Query().Get("is_like"))
	if err != nil || d < -1 || d > 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "is_like must be -1, 0 or 1")
		return
	}
	if f.votes[c.ID] == nil {
		f.votes[c.ID] = map[string]int{}
	}
	if d == 0 {
		delete(f.votes[c.ID], u.Username)
	} else {
		f.votes[c.ID][u.Username] = d
	}
	writeJSON(w, http.StatusOK, f.counts(c.ID))
}

func (f *FakeAPI) favoriteBooks(username string) []entity.Book {
	out := []entity.Book{}
	for _, key := range f.favorites[username] {
		if b, ok := f.findBook(key); ok {
			out = append(out, listing(b))
		}
	}
	return out
}

func (f *FakeAPI) listFavorites(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.requireCaller(w, r); ok {
		writeJSON(w, http.StatusOK, map[string]any{"favorite_books": f.favoriteBooks(u.Username)})
	}
}

func (f *FakeAPI) addFavorite(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, exists := f.findBook(id); !exists {
		writeDetail(w, http.StatusNotFound, "Book not found")
		return
	}
	if slices.Contains(f.favorites[u.Username], id) {
		writeDetail(w, http.StatusBadRequest, "Book already in favorites")
		return
	}
	f.favorites[u.Username] = append(f.favorites[u.Username], id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book added to favorites"})
}

func (f *FakeAPI) removeFavorite(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if !slices.Contains(f.favorites[u.Username], id) {
		writeDetail(w, http.StatusNotFound, "Book not in favorites")
		return
	}
	f.favorites[u.Username] = slices.DeleteFunc(f.favorites[u.Username], func(k string) bool { return k == id })
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book removed from favorites"})
}

// recommendations returns unfavorited books with the most views.
func (f *FakeAPI) recommendations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.requireCaller(w, r)
	if !ok {
		return
	}
	out := []entity.Book{}
	for _, b := range f.books {
		if !slices.Contains(f.favorites[u.Username], b.WorkKey) {
			out = append(out, listing(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	_, to := page(r, len(out))
	writeJSON(w, http.StatusOK, out[:to])
}
