package repositories

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/filmrate/backend/internal/models"
)

// DefaultGenres is the genre reference data every store starts with.
var DefaultGenres = []models.Genre{
	{ID: 1, Name: "Comedy"},
	{ID: 2, Name: "Drama"},
	{ID: 3, Name: "Cartoon"},
	{ID: 4, Name: "Thriller"},
	{ID: 5, Name: "Documentary"},
	{ID: 6, Name: "Action"},
}

// DefaultMpaRatings is the MPA reference data every store starts with.
var DefaultMpaRatings = []models.Mpa{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

type memoryState struct {
	nextUserID     int64
	nextFilmID     int64
	nextDirectorID int64
	nextReviewID   int64
	nextEventID    int64

	users         map[int64]models.User
	emails        map[string]int64
	friends       map[int64]map[int64]bool
	films         map[int64]models.Film
	filmGenres    map[int64][]int64
	filmDirectors map[int64][]int64
	likes         map[int64]map[int64]struct{}
	genres        map[int64]models.Genre
	mpa           map[int64]models.Mpa
	directors     map[int64]models.Director
	reviews       map[int64]models.Review
	votes         map[int64]map[int64]bool
	feed          []models.FeedEvent
	lastEventTS   map[int64]int64
}

func newMemoryState() *memoryState {
	st := &memoryState{
		nextUserID:     1,
		nextFilmID:     1,
		nextDirectorID: 1,
		nextReviewID:   1,
		nextEventID:    1,
		users:          make(map[int64]models.User),
		emails:         make(map[string]int64),
		friends:        make(map[int64]map[int64]bool),
		films:          make(map[int64]models.Film),
		filmGenres:     make(map[int64][]int64),
		filmDirectors:  make(map[int64][]int64),
		likes:          make(map[int64]map[int64]struct{}),
		genres:         make(map[int64]models.Genre),
		mpa:            make(map[int64]models.Mpa),
		directors:      make(map[int64]models.Director),
		reviews:        make(map[int64]models.Review),
		votes:          make(map[int64]map[int64]bool),
		lastEventTS:    make(map[int64]int64),
	}
	for _, g := range DefaultGenres {
		st.genres[g.ID] = g
	}
	for _, m := range DefaultMpaRatings {
		st.mpa[m.ID] = m
	}
	return st
}

func cloneNested[V any](m map[int64]map[int64]V) map[int64]map[int64]V {
	out := make(map[int64]map[int64]V, len(m))
	for k, inner := range m {
		out[k] = maps.Clone(inner)
	}
	return out
}

func cloneLists(m map[int64][]int64) map[int64][]int64 {
	out := make(map[int64][]int64, len(m))
	for k, ids := range m {
		out[k] = slices.Clone(ids)
	}
	return out
}

func (st *memoryState) clone() *memoryState {
	return &memoryState{
		nextUserID:     st.nextUserID,
		nextFilmID:     st.nextFilmID,
		nextDirectorID: st.nextDirectorID,
		nextReviewID:   st.nextReviewID,
		nextEventID:    st.nextEventID,
		users:          maps.Clone(st.users),
		emails:         maps.Clone(st.emails),
		friends:        cloneNested(st.friends),
		films:          maps.Clone(st.films),
		filmGenres:     cloneLists(st.filmGenres),
		filmDirectors:  cloneLists(st.filmDirectors),
		likes:          cloneNested(st.likes),
		genres:         maps.Clone(st.genres),
		mpa:            maps.Clone(st.mpa),
		directors:      maps.Clone(st.directors),
		reviews:        maps.Clone(st.reviews),
		votes:          cloneNested(st.votes),
		feed:           slices.Clone(st.feed),
		lastEventTS:    maps.Clone(st.lastEventTS),
	}
}

// MemoryStore keeps the catalog in process memory. It is safe for concurrent use;
// all operations are serialized by a single mutex.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memoryState
	tx    bool
}

// NewMemoryStore returns an empty store seeded with genre and MPA reference data.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, state: newMemoryState()}
}

// InTx runs fn against a private copy of the state and publishes it on success.
func (s *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&MemoryStore{mu: s.mu, state: working, tx: true}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *MemoryStore) view(ctx context.Context, fn func(st *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	return slices.Sorted(maps.Keys(m))
}

func sortedValues[V any](m map[int64]V, id func(V) int64) []V {
	return slices.SortedFunc(maps.Values(m), func(a, b V) int {
		return cmp.Compare(id(a), id(b))
	})
}

// CreateUser stores a new user and returns its id.
func (s *MemoryStore) CreateUser(ctx context.Context, user models.User) (int64, error) {
	var id int64
	err := s.view(ctx, func(st *memoryState) error {
		if _, taken := st.emails[user.Email]; taken {
			return ErrConflict
		}
		id = st.nextUserID
		st.nextUserID++
		user.ID = id
		user.FriendIDs = nil
		st.users[id] = user
		st.emails[user.Email] = id
		return nil
	})
	return id, err
}

// UpdateUser replaces a stored user.
func (s *MemoryStore) UpdateUser(ctx context.Context, user models.User) error {
	return s.view(ctx, func(st *memoryState) error {
		current, ok := st.users[user.ID]
		if !ok {
			return ErrNotFound
		}
		if owner, taken := st.emails[user.Email]; taken && owner != user.ID {
			return ErrConflict
		}
		delete(st.emails, current.Email)
		user.FriendIDs = nil
		st.users[user.ID] = user
		st.emails[user.Email] = user.ID
		return nil
	})
}

// DeleteUser removes a user together with its edges, likes, reviews and votes.
func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	return s.view(ctx, func(st *memoryState) error {
		user, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		delete(st.users, id)
		delete(st.emails, user.Email)
		delete(st.friends, id)
		for _, edges := range st.friends {
			delete(edges, id)
		}
		for _, likers := range st.likes {
			delete(likers, id)
		}
		for reviewID, review := range st.reviews {
			if review.UserID == id {
				delete(st.reviews, reviewID)
				delete(st.votes, reviewID)
			}
		}
		for _, voters := range st.votes {
			delete(voters, id)
		}
		return nil
	})
}

// FindUser fetches a user by id.
func (s *MemoryStore) FindUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.view(ctx, func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		user = u
		return nil
	})
	return user, err
}

// ListUsers returns every user ordered by id.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.view(ctx, func(st *memoryState) error {
		users = sortedValues(st.users, func(u models.User) int64 { return u.ID })
		return nil
	})
	return users, err
}

// LockUsers checks that every user exists; the store mutex provides the serialization.
func (s *MemoryStore) LockUsers(ctx context.Context, ids ...int64) error {
	return s.view(ctx, func(st *memoryState) error {
		for _, id := range ids {
			if _, ok := st.users[id]; !ok {
				return ErrNotFound
			}
		}
		return nil
	})
}

// AddEdge inserts a directional friendship edge.
func (s *MemoryStore) AddEdge(ctx context.Context, userID, friendID int64) (bool, error) {
	var added bool
	err := s.view(ctx, func(st *memoryState) error {
		if _, ok := st.users[userID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[friendID]; !ok {
			return ErrNotFound
		}
		edges := st.friends[userID]
		if edges == nil {
			edges = make(map[int64]bool)
			st.friends[userID] = edges
		}
		if _, exists := edges[friendID]; exists {
			return nil
		}
		edges[friendID] = false
		added = true
		return nil
	})
	return added, err
}

// RemoveEdge deletes a directional friendship edge.
func (s *MemoryStore) RemoveEdge(ctx context.Context, userID, friendID int64) (bool, error) {
	var removed bool
	err := s.view(ctx, func(st *memoryState) error {
		if _, exists := st.friends[userID][friendID]; exists {
			delete(st.friends[userID], friendID)
			removed = true
		}
		return nil
	})
	return removed, err
}

// SetMutual updates the mutual flag of an edge if it exists.
func (s *MemoryStore) SetMutual(ctx context.Context, userID, friendID int64, mutual bool) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, exists := st.friends[userID][friendID]; exists {
			st.friends[userID][friendID] = mutual
		}
		return nil
	})
}

// FindEdge fetches a directional friendship edge.
func (s *MemoryStore) FindEdge(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	var edge models.Friendship
	err := s.view(ctx, func(st *memoryState) error {
		mutual, exists := st.friends[userID][friendID]
		if !exists {
			return ErrNotFound
		}
		edge = models.Friendship{UserID: userID, FriendID: friendID, Mutual: mutual}
		return nil
	})
	return edge, err
}

// FriendIDs lists the outbound friends of a user.
func (s *MemoryStore) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		ids = sortedKeys(st.friends[userID])
		return nil
	})
	return ids, err
}

func storedFilm(film models.Film) models.Film {
	film.Mpa = &models.Mpa{ID: mpaID(film)}
	film.Genres = nil
	film.Directors = nil
	film.Likes = nil
	return film
}

func loadedFilm(film models.Film) models.Film {
	film.Mpa = &models.Mpa{ID: film.Mpa.ID}
	return film
}

// CreateFilm stores the base film row and returns its id.
func (s *MemoryStore) CreateFilm(ctx context.Context, film models.Film) (int64, error) {
	var id int64
	err := s.view(ctx, func(st *memoryState) error {
		if _, ok := st.mpa[mpaID(film)]; !ok {
			return ErrNotFound
		}
		id = st.nextFilmID
		st.nextFilmID++
		film.ID = id
		st.films[id] = storedFilm(film)
		return nil
	})
	return id, err
}

// UpdateFilm replaces the base film row.
func (s *MemoryStore) UpdateFilm(ctx context.Context, film models.Film) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[film.ID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.mpa[mpaID(film)]; !ok {
			return ErrNotFound
		}
		st.films[film.ID] = storedFilm(film)
		return nil
	})
}

// DeleteFilm removes a film together with its likes, links, reviews and votes.
func (s *MemoryStore) DeleteFilm(ctx context.Context, id int64) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[id]; !ok {
			return ErrNotFound
		}
		delete(st.films, id)
		delete(st.filmGenres, id)
		delete(st.filmDirectors, id)
		delete(st.likes, id)
		for reviewID, review := range st.reviews {
			if review.FilmID == id {
				delete(st.reviews, reviewID)
				delete(st.votes, reviewID)
			}
		}
		return nil
	})
}

// FindFilm fetches a base film row by id.
func (s *MemoryStore) FindFilm(ctx context.Context, id int64) (models.Film, error) {
	var film models.Film
	err := s.view(ctx, func(st *memoryState) error {
		f, ok := st.films[id]
		if !ok {
			return ErrNotFound
		}
		film = loadedFilm(f)
		return nil
	})
	return film, err
}

// ListFilms returns every base film row ordered by id.
func (s *MemoryStore) ListFilms(ctx context.Context) ([]models.Film, error) {
	var films []models.Film
	err := s.view(ctx, func(st *memoryState) error {
		for _, f := range sortedValues(st.films, func(f models.Film) int64 { return f.ID }) {
			films = append(films, loadedFilm(f))
		}
		return nil
	})
	return films, err
}

// FilmGenreIDs lists the genre ids linked to a film.
func (s *MemoryStore) FilmGenreIDs(ctx context.Context, filmID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		ids = slices.Clone(st.filmGenres[filmID])
		return nil
	})
	return ids, err
}

// ReplaceFilmGenres replaces a film's genre links.
func (s *MemoryStore) ReplaceFilmGenres(ctx context.Context, filmID int64, genreIDs []int64) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[filmID]; !ok {
			return ErrNotFound
		}
		for _, id := range genreIDs {
			if _, ok := st.genres[id]; !ok {
				return ErrNotFound
			}
		}
		st.filmGenres[filmID] = sortedUnique(genreIDs)
		return nil
	})
}

// FilmDirectorIDs lists the director ids linked to a film.
func (s *MemoryStore) FilmDirectorIDs(ctx context.Context, filmID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		ids = slices.Clone(st.filmDirectors[filmID])
		return nil
	})
	return ids, err
}

// ReplaceFilmDirectors replaces a film's director links.
func (s *MemoryStore) ReplaceFilmDirectors(ctx context.Context, filmID int64, directorIDs []int64) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[filmID]; !ok {
			return ErrNotFound
		}
		for _, id := range directorIDs {
			if _, ok := st.directors[id]; !ok {
				return ErrNotFound
			}
		}
		st.filmDirectors[filmID] = sortedUnique(directorIDs)
		return nil
	})
}

// FilmIDsByDirector lists the films credited to a director.
func (s *MemoryStore) FilmIDsByDirector(ctx context.Context, directorID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		for _, filmID := range sortedKeys(st.filmDirectors) {
			if slices.Contains(st.filmDirectors[filmID], directorID) {
				ids = append(ids, filmID)
			}
		}
		return nil
	})
	return ids, err
}

// AddLike records that a user likes a film.
func (s *MemoryStore) AddLike(ctx context.Context, filmID, userID int64) (bool, error) {
	var added bool
	err := s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[filmID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[userID]; !ok {
			return ErrNotFound
		}
		likers := st.likes[filmID]
		if likers == nil {
			likers = make(map[int64]struct{})
			st.likes[filmID] = likers
		}
		if _, exists := likers[userID]; exists {
			return nil
		}
		likers[userID] = struct{}{}
		added = true
		return nil
	})
	return added, err
}

// RemoveLike deletes a like.
func (s *MemoryStore) RemoveLike(ctx context.Context, filmID, userID int64) (bool, error) {
	var removed bool
	err := s.view(ctx, func(st *memoryState) error {
		if _, exists := st.likes[filmID][userID]; exists {
			delete(st.likes[filmID], userID)
			removed = true
		}
		return nil
	})
	return removed, err
}

// FilmLikes lists the users who like a film.
func (s *MemoryStore) FilmLikes(ctx context.Context, filmID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		ids = sortedKeys(st.likes[filmID])
		return nil
	})
	return ids, err
}

// UserLikes lists the films a user likes.
func (s *MemoryStore) UserLikes(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := s.view(ctx, func(st *memoryState) error {
		for _, filmID := range sortedKeys(st.likes) {
			if _, ok := st.likes[filmID][userID]; ok {
				ids = append(ids, filmID)
			}
		}
		return nil
	})
	return ids, err
}

// Genres lists every genre ordered by id.
func (s *MemoryStore) Genres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := s.view(ctx, func(st *memoryState) error {
		genres = sortedValues(st.genres, func(g models.Genre) int64 { return g.ID })
		return nil
	})
	return genres, err
}

// Genre fetches a genre by id.
func (s *MemoryStore) Genre(ctx context.Context, id int64) (models.Genre, error) {
	var genre models.Genre
	err := s.view(ctx, func(st *memoryState) error {
		g, ok := st.genres[id]
		if !ok {
			return ErrNotFound
		}
		genre = g
		return nil
	})
	return genre, err
}

// MpaRatings lists every MPA rating ordered by id.
func (s *MemoryStore) MpaRatings(ctx context.Context) ([]models.Mpa, error) {
	var ratings []models.Mpa
	err := s.view(ctx, func(st *memoryState) error {
		ratings = sortedValues(st.mpa, func(m models.Mpa) int64 { return m.ID })
		return nil
	})
	return ratings, err
}

// Mpa fetches an MPA rating by id.
func (s *MemoryStore) Mpa(ctx context.Context, id int64) (models.Mpa, error) {
	var rating models.Mpa
	err := s.view(ctx, func(st *memoryState) error {
		m, ok := st.mpa[id]
		if !ok {
			return ErrNotFound
		}
		rating = m
		return nil
	})
	return rating, err
}

// Directors lists every director ordered by id.
func (s *MemoryStore) Directors(ctx context.Context) ([]models.Director, error) {
	var directors []models.Director
	err := s.view(ctx, func(st *memoryState) error {
		directors = sortedValues(st.directors, func(d models.Director) int64 { return d.ID })
		return nil
	})
	return directors, err
}

// Director fetches a director by id.
func (s *MemoryStore) Director(ctx context.Context, id int64) (models.Director, error) {
	var director models.Director
	err := s.view(ctx, func(st *memoryState) error {
		d, ok := st.directors[id]
		if !ok {
			return ErrNotFound
		}
		director = d
		return nil
	})
	return director, err
}

// CreateDirector stores a director and returns its id.
func (s *MemoryStore) CreateDirector(ctx context.Context, director models.Director) (int64, error) {
	var id int64
	err := s.view(ctx, func(st *memoryState) error {
		id = st.nextDirectorID
		st.nextDirectorID++
		director.ID = id
		st.directors[id] = director
		return nil
	})
	return id, err
}

// UpdateDirector renames a director.
func (s *MemoryStore) UpdateDirector(ctx context.Context, director models.Director) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.directors[director.ID]; !ok {
			return ErrNotFound
		}
		st.directors[director.ID] = director
		return nil
	})
}

// DeleteDirector removes a director and unlinks it from every film.
func (s *MemoryStore) DeleteDirector(ctx context.Context, id int64) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.directors[id]; !ok {
			return ErrNotFound
		}
		delete(st.directors, id)
		for filmID, ids := range st.filmDirectors {
			st.filmDirectors[filmID] = slices.DeleteFunc(ids, func(d int64) bool { return d == id })
		}
		return nil
	})
}

func (st *memoryState) usefulness(reviewID int64) int {
	var useful int
	for _, up := range st.votes[reviewID] {
		if up {
			useful++
		} else {
			useful--
		}
	}
	return useful
}

func (st *memoryState) loadReview(review models.Review) models.Review {
	if review.IsPositive != nil {
		positive := *review.IsPositive
		review.IsPositive = &positive
	}
	review.Useful = st.usefulness(review.ID)
	return review
}

// CreateReview stores a review and returns its id.
func (s *MemoryStore) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	var id int64
	err := s.view(ctx, func(st *memoryState) error {
		if _, ok := st.films[review.FilmID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[review.UserID]; !ok {
			return ErrNotFound
		}
		id = st.nextReviewID
		st.nextReviewID++
		review.ID = id
		review.Useful = 0
		st.reviews[id] = st.loadReview(review)
		return nil
	})
	return id, err
}

// UpdateReview replaces the content and polarity of a review.
func (s *MemoryStore) UpdateReview(ctx context.Context, review models.Review) error {
	return s.view(ctx, func(st *memoryState) error {
		current, ok := st.reviews[review.ID]
		if !ok {
			return ErrNotFound
		}
		current.Content = review.Content
		current.IsPositive = review.IsPositive
		st.reviews[review.ID] = st.loadReview(current)
		return nil
	})
}

// DeleteReview removes a review and its votes.
func (s *MemoryStore) DeleteReview(ctx context.Context, id int64) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.reviews[id]; !ok {
			return ErrNotFound
		}
		delete(st.reviews, id)
		delete(st.votes, id)
		return nil
	})
}

// FindReview fetches a review with its current usefulness.
func (s *MemoryStore) FindReview(ctx context.Context, id int64) (models.Review, error) {
	var review models.Review
	err := s.view(ctx, func(st *memoryState) error {
		r, ok := st.reviews[id]
		if !ok {
			return ErrNotFound
		}
		review = st.loadReview(r)
		return nil
	})
	return review, err
}

// ListReviews returns reviews with their current usefulness ordered by id.
func (s *MemoryStore) ListReviews(ctx context.Context, filmID *int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.view(ctx, func(st *memoryState) error {
		for _, r := range sortedValues(st.reviews, func(r models.Review) int64 { return r.ID }) {
			if filmID != nil && r.FilmID != *filmID {
				continue
			}
			reviews = append(reviews, st.loadReview(r))
		}
		return nil
	})
	return reviews, err
}

// UpsertVote records or replaces a user's vote on a review.
func (s *MemoryStore) UpsertVote(ctx context.Context, vote models.ReviewVote) error {
	return s.view(ctx, func(st *memoryState) error {
		if _, ok := st.reviews[vote.ReviewID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[vote.UserID]; !ok {
			return ErrNotFound
		}
		voters := st.votes[vote.ReviewID]
		if voters == nil {
			voters = make(map[int64]bool)
			st.votes[vote.ReviewID] = voters
		}
		voters[vote.UserID] = vote.Useful
		return nil
	})
}

// DeleteVote removes a vote of the given polarity.
func (s *MemoryStore) DeleteVote(ctx context.Context, vote models.ReviewVote) (bool, error) {
	var removed bool
	err := s.view(ctx, func(st *memoryState) error {
		current, exists := st.votes[vote.ReviewID][vote.UserID]
		if exists && current == vote.Useful {
			delete(st.votes[vote.ReviewID], vote.UserID)
			removed = true
		}
		return nil
	})
	return removed, err
}

// AppendEvent stores a feed event, clamping its timestamp to the user's latest one.
func (s *MemoryStore) AppendEvent(ctx context.Context, event models.FeedEvent) (models.FeedEvent, error) {
	err := s.view(ctx, func(st *memoryState) error {
		if last, ok := st.lastEventTS[event.UserID]; ok && event.Timestamp < last {
			event.Timestamp = last
		}
		event.ID = st.nextEventID
		st.nextEventID++
		st.feed = append(st.feed, event)
		st.lastEventTS[event.UserID] = event.Timestamp
		return nil
	})
	if err != nil {
		return models.FeedEvent{}, err
	}
	return event, nil
}

// EventsFor lists a user's feed events in timestamp order.
func (s *MemoryStore) EventsFor(ctx context.Context, userID int64) ([]models.FeedEvent, error) {
	var events []models.FeedEvent
	err := s.view(ctx, func(st *memoryState) error {
		for _, event := range st.feed {
			if event.UserID == userID {
				events = append(events, event)
			}
		}
		return nil
	})
	slices.SortStableFunc(events, func(a, b models.FeedEvent) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return events, err
}

var _ Store = (*MemoryStore)(nil)
