package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/Dosada05/tournament-archive/storage"
	"github.com/lib/pq"
)

// undefinedTableErr имитирует Postgres 42P01 для опциональных таблиц.
func undefinedTableErr(table string) error {
	return &pq.Error{Code: "42P01", Message: "relation \"" + table + "\" does not exist"}
}

// memObjectStore — потокобезопасное хранилище в памяти. Каждая операция
// атомарна сама по себе, но последовательность read-modify-write не
// атомарна — ровно как у настоящего блоб-хранилища.
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	failPuts map[string]int // key -> сколько ближайших Put уронить
	failGets map[string]int
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{
		objects:  make(map[string][]byte),
		failPuts: make(map[string]int),
		failGets: make(map[string]int),
	}
}

func (m *memObjectStore) Put(ctx context.Context, key string, contentType string, data []byte) (*storage.PutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts[key] > 0 {
		m.failPuts[key]--
		return nil, fmt.Errorf("simulated put failure for %s", key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp
	return &storage.PutResult{
		Key:      key,
		Location: m.GetPublicURL(key),
		ETag:     fmt.Sprintf("etag-%d", time.Now().UnixNano()),
		Size:     int64(len(data)),
	}, nil
}

func (m *memObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets[key] > 0 {
		m.failGets[key]--
		return nil, fmt.Errorf("simulated get failure for %s", key)
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *memObjectStore) Head(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0)
	for k := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memObjectStore) GetPublicURL(key string) string {
	return "https://cdn.example.test/" + key
}

func (m *memObjectStore) putRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *memObjectStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Репозитории-заглушки для коллектора.

type stubTournamentRepo struct {
	tournament *models.Tournament
	getErr     error
	deleteErr  error

	mu           sync.Mutex
	stamped      bool
	stampVersion string
	cleared      bool
	deleted      bool
}

func (s *stubTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	t := *s.tournament
	return &t, nil
}

func (s *stubTournamentRepo) StampArchive(ctx context.Context, id int, version string, archivedAt time.Time, archivedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamped = true
	s.stampVersion = version
	return nil
}

func (s *stubTournamentRepo) ClearArchiveStamp(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	return nil
}

func (s *stubTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = true
	return nil
}

type stubTeamRepo struct {
	teams []models.Team
	err   error
}

func (s *stubTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	return s.teams, s.err
}

type stubMatchRepo struct {
	matches []models.Match
	err     error
}

func (s *stubMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	return s.matches, s.err
}

type stubStandingRepo struct {
	standings []models.Standing
	err       error
}

func (s *stubStandingRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	return s.standings, s.err
}

type stubResultRepo struct {
	results []models.HeadToHeadResult
	err     error
}

func (s *stubResultRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.HeadToHeadResult, error) {
	return s.results, s.err
}

type stubFileRepo struct {
	files []models.TournamentFile
	err   error
}

func (s *stubFileRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentFile, error) {
	return s.files, s.err
}

// stubCollector подставляется вместо настоящего коллектора в тестах
// архиватора.
type stubCollector struct {
	snapshot *models.TournamentSnapshot
	err      error
}

func (s *stubCollector) BuildSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := *s.snapshot
	return &snap, nil
}

// fakeCleanupRepo моделирует зависимые таблицы как множества строк.
type fakeCleanupRepo struct {
	mu     sync.Mutex
	tables map[string][]int // table -> оставшиеся id строк

	failDeleteOnce   map[string]bool // уронить первый DeleteByTournament
	failDeleteAlways map[string]bool // ронять каждый DeleteByTournament
	missingTables    map[string]bool // таблица отсутствует (42P01)
	blobKeys         []string
}

func newFakeCleanupRepo(tables map[string][]int) *fakeCleanupRepo {
	return &fakeCleanupRepo{
		tables:           tables,
		failDeleteOnce:   make(map[string]bool),
		failDeleteAlways: make(map[string]bool),
		missingTables:    make(map[string]bool),
	}
}

func (f *fakeCleanupRepo) DeleteByTournament(ctx context.Context, table string, tournamentID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missingTables[table] {
		return 0, undefinedTableErr(table)
	}
	if f.failDeleteAlways[table] {
		return 0, fmt.Errorf("simulated delete failure for %s", table)
	}
	if f.failDeleteOnce[table] {
		f.failDeleteOnce[table] = false
		return 0, fmt.Errorf("simulated delete failure for %s", table)
	}
	n := int64(len(f.tables[table]))
	f.tables[table] = nil
	return n, nil
}

func (f *fakeCleanupRepo) CountByTournament(ctx context.Context, table string, tournamentID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missingTables[table] {
		return 0, undefinedTableErr(table)
	}
	return int64(len(f.tables[table])), nil
}

func (f *fakeCleanupRepo) SampleIDs(ctx context.Context, table string, tournamentID int, limit int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.tables[table]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}

func (f *fakeCleanupRepo) ListBlobKeys(ctx context.Context, tournamentID int) ([]string, error) {
	return f.blobKeys, nil
}

func (f *fakeCleanupRepo) remaining(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}
