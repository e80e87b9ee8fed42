package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Blaise762/FemTechBI-MVP/internal/dataprocessing"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

type upload struct {
	info  domain.UploadInfo
	table domain.RawTable
}

// Session is the explicit per-visitor state: the access form gate, the
// active page, the latest upload per source, the current selection and the
// last pipeline result. All methods are safe for concurrent use; requests
// against one session serialize on its mutex.
type Session struct {
	mu sync.Mutex

	id            string
	formCompleted bool
	activePage    domain.Page
	uploads       map[domain.Source]*upload
	selection     domain.Selection
	result        *domain.PipelineResult

	createdAt time.Time
	updatedAt time.Time

	// lastActivity mirrors updatedAt in unix nanoseconds so the sweeper can
	// read it without waiting on mu.
	lastActivity atomic.Int64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		id:         id,
		activePage: domain.PageHome,
		uploads:    make(map[domain.Source]*upload),
		selection:  dataprocessing.DefaultSelection(nil),
		createdAt:  now,
		updatedAt:  now,
	}
	s.lastActivity.Store(now.UnixNano())
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

func (s *Session) touch() {
	s.updatedAt = time.Now()
	s.lastActivity.Store(s.updatedAt.UnixNano())
}

// SubmitForm marks the access form as completed
func (s *Session) SubmitForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formCompleted = true
	s.touch()
}

// Navigate moves the session to page. Every page but home sits behind the
// access form.
func (s *Session) Navigate(page domain.Page) error {
	if !page.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if page.RequiresForm() && !s.formCompleted {
		return fmt.Errorf("navigate to %s: %w", page, ErrFormRequired)
	}
	s.activePage = page
	s.touch()
	return nil
}

// SelectFile stores a freshly ingested table for source, re-runs the whole
// pipeline over the latest table of each source and resets the selection to
// every region and every available year. A source that was never uploaded
// runs as an empty table.
func (s *Session) SelectFile(ctx context.Context, p *dataprocessing.Pipeline, source domain.Source, info domain.UploadInfo, table domain.RawTable) domain.PipelineResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads[source] = &upload{info: info, table: table}

	var vital, shortage domain.RawTable
	if u, ok := s.uploads[domain.SourceVital]; ok {
		vital = u.table
	}
	if u, ok := s.uploads[domain.SourceShortage]; ok {
		shortage = u.table
	}

	result := p.Run(ctx, vital, shortage)
	s.result = &result
	s.selection = dataprocessing.DefaultSelection(result.Years)
	s.touch()
	return result
}

// ChangeFilters replaces the selection and re-applies it to the last result
func (s *Session) ChangeFilters(sel domain.Selection) domain.FilteredResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = copySelection(sel)
	s.touch()
	return s.filteredLocked()
}

// Filtered returns the last result restricted to the current selection
func (s *Session) Filtered() domain.FilteredResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked()
}

func (s *Session) filteredLocked() domain.FilteredResult {
	result := domain.PipelineResult{
		Status:  domain.StatusEmptyInput,
		Unified: domain.UnifiedTable{Fields: []domain.Role{}, Records: []domain.UnifiedRecord{}},
		Scored:  []domain.ScoredRecord{},
		Years:   []int{},
	}
	if s.result != nil {
		result = *s.result
	}
	return dataprocessing.ApplySelection(result, copySelection(s.selection))
}

// FormCompleted reports whether the access form was submitted
func (s *Session) FormCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formCompleted
}

// Years returns the years available in the last result
func (s *Session) Years() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return []int{}
	}
	return append([]int{}, s.result.Years...)
}

// LastActivity returns the time of the last transition. It does not block
// on a transition in progress.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// Snapshot returns an independent copy of the session state
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		ID:            s.id,
		FormCompleted: s.formCompleted,
		ActivePage:    s.activePage,
		Uploads:       make(map[domain.Source]*domain.UploadInfo, len(s.uploads)),
		Selection:     copySelection(s.selection),
		Years:         []int{},
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
	for source, u := range s.uploads {
		info := u.info
		snap.Uploads[source] = &info
	}
	if s.result != nil {
		snap.Status = s.result.Status
		snap.Years = append(snap.Years, s.result.Years...)
		snap.Warnings = append([]string(nil), s.result.Warnings...)
	}
	return snap
}

func copySelection(sel domain.Selection) domain.Selection {
	return domain.Selection{
		Regions: append([]domain.RegionCode{}, sel.Regions...),
		Years:   append([]int{}, sel.Years...),
	}
}

// SessionStore keeps sessions in memory, keyed by a random uuid
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	idleTTL     time.Duration
}

// NewSessionStore creates a store holding at most maxSessions sessions.
// Sessions idle for longer than idleTTL are removed by Sweep; a zero TTL
// disables expiry.
func NewSessionStore(maxSessions int, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
	}
}

// Create adds a new session
func (st *SessionStore) Create() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		return nil, ErrSessionLimit
	}
	sess := newSession(uuid.New().String(), time.Now())
	st.sessions[sess.id] = sess
	return sess, nil
}

// Get returns the session with id
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Delete removes the session with id and reports whether it existed
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle since before now minus the TTL and returns
// their ids
func (st *SessionStore) Sweep(now time.Time) []string {
	if st.idleTTL <= 0 {
		return nil
	}
	cutoff := now.Add(-st.idleTTL)

	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []string
	for id, sess := range st.sessions {
		if sess.LastActivity().Before(cutoff) {
			delete(st.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}
