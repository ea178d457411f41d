package server

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"MixFM/model"
	"MixFM/repository"
)

// In-memory stores implementing the repository interfaces, so the full
// routing and orchestration stack runs in tests without MySQL.

type fakePair struct {
	id      int64
	ownerID int64
	target  int64
}

type fakeLinkStore struct {
	mu           sync.Mutex
	name         string
	pairs        []fakePair
	nextID       int64
	uniqueTarget bool // at most one owner per target (user_songs, user_comments)
	ownerExists  func(int64) bool
	targetExists func(int64) bool
}

func (s *fakeLinkStore) Link(ctx context.Context, ownerID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerExists != nil && !s.ownerExists(ownerID) {
		return fmt.Errorf("%s owner %d: %w", s.name, ownerID, repository.ErrMissingReference)
	}
	if s.targetExists != nil && !s.targetExists(targetID) {
		return fmt.Errorf("%s target %d: %w", s.name, targetID, repository.ErrMissingReference)
	}
	for _, p := range s.pairs {
		if p.ownerID == ownerID && p.target == targetID {
			return fmt.Errorf("%s (%d, %d): %w", s.name, ownerID, targetID, repository.ErrConflict)
		}
		if s.uniqueTarget && p.target == targetID {
			return fmt.Errorf("%s (%d, %d): %w", s.name, ownerID, targetID, repository.ErrConflict)
		}
	}

	s.nextID++
	s.pairs = append(s.pairs, fakePair{id: s.nextID, ownerID: ownerID, target: targetID})
	return nil
}

func (s *fakeLinkStore) Unlink(ctx context.Context, ownerID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pairs[:0]
	for _, p := range s.pairs {
		if p.ownerID == ownerID && p.target == targetID {
			continue
		}
		kept = append(kept, p)
	}
	s.pairs = kept
	return nil
}

func (s *fakeLinkStore) Owner(ctx context.Context, targetID int64) (int64, error) {
	owners, err := s.Owners(ctx, targetID)
	if err != nil {
		return 0, err
	}
	switch len(owners) {
	case 0:
		return 0, nil
	case 1:
		return owners[0], nil
	default:
		return 0, fmt.Errorf("%s multiple owners for %d: %w", s.name, targetID, repository.ErrIntegrity)
	}
}

func (s *fakeLinkStore) Owners(ctx context.Context, targetID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0)
	for _, p := range s.pairs {
		if p.target == targetID {
			ids = append(ids, p.ownerID)
		}
	}
	return ids, nil
}

func (s *fakeLinkStore) Targets(ctx context.Context, ownerID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0)
	for _, p := range s.pairs {
		if p.ownerID == ownerID {
			ids = append(ids, p.target)
		}
	}
	return ids, nil
}

// removeTarget drops every pair referencing a target. Used by the fake
// song store's cascading delete.
func (s *fakeLinkStore) removeTarget(targetID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pairs[:0]
	for _, p := range s.pairs {
		if p.target == targetID {
			continue
		}
		kept = append(kept, p)
	}
	s.pairs = kept
}

func (s *fakeLinkStore) pairCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(user.Username) == "" || user.PasswordHash == "" {
		return 0, fmt.Errorf("username and password are required: %w", repository.ErrValidation)
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return 0, fmt.Errorf("username %q: %w", user.Username, repository.ErrDuplicateUser)
		}
	}

	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
}

func (r *fakeUserRepo) exists(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok
}

type fakeSongRepo struct {
	mu     sync.Mutex
	songs  map[int64]*model.Song
	nextID int64

	// cascade targets, mirroring the SQL transaction
	userSongs     *fakeLinkStore
	playlistSongs *fakeLinkStore
}

func newFakeSongRepo() *fakeSongRepo {
	return &fakeSongRepo{songs: make(map[int64]*model.Song)}
}

func (r *fakeSongRepo) CreateSong(ctx context.Context, song *model.Song) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(song.Title) == "" {
		return 0, fmt.Errorf("song title is required: %w", repository.ErrValidation)
	}

	r.nextID++
	stored := *song
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.songs[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeSongRepo) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	song, ok := r.songs[id]
	if !ok {
		return nil, fmt.Errorf("song %d: %w", id, repository.ErrNotFound)
	}
	copied := *song
	return &copied, nil
}

func (r *fakeSongRepo) GetAllSongs(ctx context.Context) ([]*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.songs))
	for id := range r.songs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	songs := make([]*model.Song, 0, len(ids))
	for _, id := range ids {
		copied := *r.songs[id]
		songs = append(songs, &copied)
	}
	return songs, nil
}

func (r *fakeSongRepo) UpdateSongFilePath(ctx context.Context, songID int64, filePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	song, ok := r.songs[songID]
	if !ok {
		return fmt.Errorf("song %d: %w", songID, repository.ErrNotFound)
	}
	song.FilePath = filePath
	return nil
}

func (r *fakeSongRepo) DeleteSongCascade(ctx context.Context, songID int64) error {
	r.mu.Lock()
	if _, ok := r.songs[songID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("song %d: %w", songID, repository.ErrNotFound)
	}
	delete(r.songs, songID)
	r.mu.Unlock()

	if r.userSongs != nil {
		r.userSongs.removeTarget(songID)
	}
	if r.playlistSongs != nil {
		r.playlistSongs.removeTarget(songID)
	}
	return nil
}

func (r *fakeSongRepo) exists(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.songs[id]
	return ok
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[int64]*model.Playlist
	nextID    int64

	userPlaylists *fakeLinkStore
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: make(map[int64]*model.Playlist)}
}

func (r *fakePlaylistRepo) CreatePlaylistWithOwner(ctx context.Context, playlist *model.Playlist, ownerID int64) (int64, error) {
	r.mu.Lock()

	if strings.TrimSpace(playlist.Name) == "" {
		r.mu.Unlock()
		return 0, fmt.Errorf("playlist name is required: %w", repository.ErrValidation)
	}

	r.nextID++
	stored := *playlist
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.playlists[stored.ID] = &stored
	id := stored.ID
	r.mu.Unlock()

	// Same all-or-nothing behavior as the SQL transaction.
	if err := r.userPlaylists.Link(ctx, ownerID, id); err != nil {
		r.mu.Lock()
		delete(r.playlists, id)
		r.mu.Unlock()
		return 0, err
	}
	return id, nil
}

func (r *fakePlaylistRepo) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	playlist, ok := r.playlists[id]
	if !ok {
		return nil, fmt.Errorf("playlist %d: %w", id, repository.ErrNotFound)
	}
	copied := *playlist
	return &copied, nil
}

func (r *fakePlaylistRepo) GetAllPlaylists(ctx context.Context) ([]*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.playlists))
	for id := range r.playlists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	playlists := make([]*model.Playlist, 0, len(ids))
	for _, id := range ids {
		copied := *r.playlists[id]
		playlists = append(playlists, &copied)
	}
	return playlists, nil
}

func (r *fakePlaylistRepo) GetPlaylistsByIDs(ctx context.Context, ids []int64) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0, len(ids))
	for _, id := range ids {
		playlist, err := r.GetPlaylistByID(ctx, id)
		if err != nil {
			continue
		}
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

func (r *fakePlaylistRepo) exists(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.playlists[id]
	return ok
}

func (r *fakePlaylistRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.playlists)
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[int64]*model.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*model.Comment)}
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(comment.Text) == "" {
		return 0, fmt.Errorf("comment text is required: %w", repository.ErrValidation)
	}

	r.nextID++
	comment.ID = r.nextID
	stored := *comment
	r.comments[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeCommentRepo) GetCommentByID(ctx context.Context, id int64) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, repository.ErrNotFound)
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) GetAllComments(ctx context.Context) ([]*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.comments))
	for id := range r.comments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	comments := make([]*model.Comment, 0, len(ids))
	for _, id := range ids {
		copied := *r.comments[id]
		comments = append(comments, &copied)
	}
	return comments, nil
}

func (r *fakeCommentRepo) DeleteComment(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("comment %d: %w", id, repository.ErrNotFound)
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) exists(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.comments[id]
	return ok
}

// fakeBlobStore keeps payloads in memory.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, songID int64, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("audio/%d.mp3", songID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, nil
}

func (s *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *fakeBlobStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// testEnv wires a full APIHandler over the fake stores.
type testEnv struct {
	users     *fakeUserRepo
	songs     *fakeSongRepo
	playlists *fakePlaylistRepo
	comments  *fakeCommentRepo

	userPlaylists    *fakeLinkStore
	userSongs        *fakeLinkStore
	playlistSongs    *fakeLinkStore
	userComments     *fakeLinkStore
	playlistComments *fakeLinkStore

	blobs   *fakeBlobStore
	handler *APIHandler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newFakeUserRepo(),
		songs:     newFakeSongRepo(),
		playlists: newFakePlaylistRepo(),
		comments:  newFakeCommentRepo(),
		blobs:     newFakeBlobStore(),
	}

	env.userPlaylists = &fakeLinkStore{
		name:         "user_playlists",
		ownerExists:  env.users.exists,
		targetExists: env.playlists.exists,
	}
	env.userSongs = &fakeLinkStore{
		name:         "user_songs",
		uniqueTarget: true,
		ownerExists:  env.users.exists,
		targetExists: env.songs.exists,
	}
	env.playlistSongs = &fakeLinkStore{
		name:         "playlist_songs",
		ownerExists:  env.playlists.exists,
		targetExists: env.songs.exists,
	}
	env.userComments = &fakeLinkStore{
		name:         "user_comments",
		uniqueTarget: true,
		ownerExists:  env.users.exists,
		targetExists: env.comments.exists,
	}
	env.playlistComments = &fakeLinkStore{
		name:         "playlist_comments",
		ownerExists:  env.playlists.exists,
		targetExists: env.comments.exists,
	}

	env.songs.userSongs = env.userSongs
	env.songs.playlistSongs = env.playlistSongs
	env.playlists.userPlaylists = env.userPlaylists

	env.handler = NewAPIHandler(
		env.users, env.songs, env.playlists, env.comments,
		env.userPlaylists, env.userSongs, env.playlistSongs,
		env.userComments, env.playlistComments,
		env.blobs, nil,
	)
	return env
}
