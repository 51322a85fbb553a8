package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	checkinsrepo "github.com/dmitrijs2005/goodnight/internal/server/repositories/checkins"
	friendshipsrepo "github.com/dmitrijs2005/goodnight/internal/server/repositories/friendships"
	messagesrepo "github.com/dmitrijs2005/goodnight/internal/server/repositories/messages"
	reactionsrepo "github.com/dmitrijs2005/goodnight/internal/server/repositories/reactions"
	usersrepo "github.com/dmitrijs2005/goodnight/internal/server/repositories/users"
)

// --- shared fakes ---

func newTestLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUsersRepo struct {
	byID map[string]*models.User

	// takenCodes forces ErrorShortCodeTaken for the listed codes.
	takenCodes map[string]bool
	// takeAll forces every allocation attempt to collide.
	takeAll bool

	createErr error
	getErr    error
	// missFirstGet makes the first GetByID miss even when the record is
	// present, simulating a concurrent create landing after the probe.
	missFirstGet bool

	createCalls  int
	summaryCalls int
	lastSummary  *models.CheckinSummary
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, takenCodes: map[string]bool{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.takeAll || f.takenCodes[u.ShortCode] {
		return common.ErrorShortCodeTaken
	}
	if _, ok := f.byID[u.ID]; ok {
		return common.ErrorAlreadyExists
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.missFirstGet {
		f.missFirstGet = false
		return nil, common.ErrorNotFound
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByShortCode(ctx context.Context, code string) (*models.User, error) {
	for _, u := range f.byID {
		if u.ShortCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id, displayName, sleepTime, slotKey string, tzOffsetMin int) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.DisplayName = displayName
	u.SleepTime = sleepTime
	u.SlotKey = slotKey
	u.TzOffsetMin = tzOffsetMin
	return nil
}

func (f *fakeUsersRepo) UpdateSummary(ctx context.Context, id string, s *models.CheckinSummary) error {
	f.summaryCalls++
	f.lastSummary = s
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Streak = s.Streak
	u.TotalDays = s.TotalDays
	u.LastCheckinDate = s.Date
	u.TodayStatus = s.TodayStatus
	return nil
}

type fakeCheckinsRepo struct {
	records map[string]*models.Checkin

	// forceConflict makes Create report a lost race even when no record
	// existed at probe time, then materializes conflictRecord.
	forceConflict  bool
	conflictRecord *models.Checkin

	createErr error
}

func newFakeCheckinsRepo() *fakeCheckinsRepo {
	return &fakeCheckinsRepo{records: map[string]*models.Checkin{}}
}

func checkinKey(userCode, date string) string { return userCode + "#" + date }

func (f *fakeCheckinsRepo) Get(ctx context.Context, userCode, date string) (*models.Checkin, error) {
	c, ok := f.records[checkinKey(userCode, date)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCheckinsRepo) Create(ctx context.Context, c *models.Checkin) (checkinsrepo.Outcome, error) {
	if f.createErr != nil {
		return checkinsrepo.OutcomeAlreadyExists, f.createErr
	}
	key := checkinKey(c.UserCode, c.Date)
	if f.forceConflict {
		f.forceConflict = false
		f.records[key] = f.conflictRecord
		return checkinsrepo.OutcomeAlreadyExists, nil
	}
	if _, ok := f.records[key]; ok {
		return checkinsrepo.OutcomeAlreadyExists, nil
	}
	cp := *c
	cp.CreatedAt = time.Now()
	f.records[key] = &cp
	return checkinsrepo.OutcomeCreated, nil
}

func (f *fakeCheckinsRepo) SetMessageID(ctx context.Context, userCode, date, messageID string) error {
	c, ok := f.records[checkinKey(userCode, date)]
	if ok && c.MessageID == "" {
		c.MessageID = messageID
	}
	return nil
}

type fakeMessagesRepo struct {
	byID map[string]*models.Message

	// pickBySlot returns a fixed draw result per slot key; "" is the
	// any-slot pool. Absent slots report an empty pool.
	pickBySlot map[string]*models.Message

	pickCalls   []messagesrepo.Filter
	deltaCalls  int
	deltaErr    error
	lastDeltaID string
}

func newFakeMessagesRepo() *fakeMessagesRepo {
	return &fakeMessagesRepo{byID: map[string]*models.Message{}, pickBySlot: map[string]*models.Message{}}
}

func (f *fakeMessagesRepo) Create(ctx context.Context, m *models.Message) error {
	for _, existing := range f.byID {
		if existing.AuthorCode == m.AuthorCode && existing.Date == m.Date {
			return common.ErrorAlreadyExists
		}
	}
	cp := *m
	cp.CreatedAt = time.Now()
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMessagesRepo) Get(ctx context.Context, id string) (*models.Message, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessagesRepo) GetByAuthorDate(ctx context.Context, authorCode, date string) (*models.Message, error) {
	for _, m := range f.byID {
		if m.AuthorCode == authorCode && m.Date == date {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessagesRepo) PickRandom(ctx context.Context, filter messagesrepo.Filter, pivot float64) (*models.Message, error) {
	f.pickCalls = append(f.pickCalls, filter)
	m, ok := f.pickBySlot[filter.SlotKey]
	if !ok || m == nil {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessagesRepo) ApplyDelta(ctx context.Context, id string, dLikes, dDislikes, dScore int) error {
	f.deltaCalls++
	f.lastDeltaID = id
	if f.deltaErr != nil {
		return f.deltaErr
	}
	m, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.Likes += dLikes
	m.Dislikes += dDislikes
	m.Score += dScore
	return nil
}

type fakeReactionsRepo struct {
	entries map[string]*models.ReactionEntry
	events  []*models.DeltaEvent

	// loseInserts makes the next n conditional inserts report a lost race.
	loseInserts int
	// loseFlips makes the next n conditional flips report a lost race.
	loseFlips int

	listErr   error
	deleteErr error
}

func newFakeReactionsRepo() *fakeReactionsRepo {
	return &fakeReactionsRepo{entries: map[string]*models.ReactionEntry{}}
}

func reactionKey(voterCode, messageID string) string { return voterCode + "#" + messageID }

func (f *fakeReactionsRepo) Get(ctx context.Context, voterCode, messageID string) (*models.ReactionEntry, error) {
	e, ok := f.entries[reactionKey(voterCode, messageID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeReactionsRepo) Create(ctx context.Context, e *models.ReactionEntry) (bool, error) {
	key := reactionKey(e.VoterCode, e.MessageID)
	if f.loseInserts > 0 {
		f.loseInserts--
		if _, ok := f.entries[key]; !ok {
			// The concurrent winner's entry appears with the opposite value.
			f.entries[key] = &models.ReactionEntry{VoterCode: e.VoterCode, MessageID: e.MessageID, Value: -e.Value}
		}
		return false, nil
	}
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	cp := *e
	f.entries[key] = &cp
	return true, nil
}

func (f *fakeReactionsRepo) UpdateValue(ctx context.Context, voterCode, messageID string, prev, next int) (bool, error) {
	if f.loseFlips > 0 {
		f.loseFlips--
		return false, nil
	}
	e, ok := f.entries[reactionKey(voterCode, messageID)]
	if !ok || e.Value != prev {
		return false, nil
	}
	e.Value = next
	return true, nil
}

func (f *fakeReactionsRepo) AppendEvent(ctx context.Context, ev *models.DeltaEvent) error {
	cp := *ev
	cp.CreatedAt = time.Now()
	f.events = append(f.events, &cp)
	return nil
}

func (f *fakeReactionsRepo) ListEvents(ctx context.Context, limit int) ([]*models.DeltaEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeReactionsRepo) DeleteEvents(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*models.DeltaEvent
	for _, ev := range f.events {
		if !drop[ev.ID] {
			kept = append(kept, ev)
		}
	}
	f.events = kept
	return nil
}

type fakeFriendshipsRepo struct {
	requests map[string]*models.FriendRequest
	edges    map[string]*models.FriendshipEdge

	createReqErr error
}

func newFakeFriendshipsRepo() *fakeFriendshipsRepo {
	return &fakeFriendshipsRepo{
		requests: map[string]*models.FriendRequest{},
		edges:    map[string]*models.FriendshipEdge{},
	}
}

func (f *fakeFriendshipsRepo) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	if f.createReqErr != nil {
		return f.createReqErr
	}
	for _, r := range f.requests {
		if r.RequesterCode == req.RequesterCode && r.TargetCode == req.TargetCode && r.Status == models.FriendRequestPending {
			return common.ErrorAlreadyExists
		}
	}
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeFriendshipsRepo) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFriendshipsRepo) FindPending(ctx context.Context, requesterCode, targetCode string) (*models.FriendRequest, error) {
	for _, r := range f.requests {
		if r.RequesterCode == requesterCode && r.TargetCode == targetCode && r.Status == models.FriendRequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFriendshipsRepo) SetRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeFriendshipsRepo) CreateEdge(ctx context.Context, e *models.FriendshipEdge) error {
	if _, ok := f.edges[e.Key]; ok {
		return nil
	}
	cp := *e
	cp.CreatedAt = time.Now()
	f.edges[e.Key] = &cp
	return nil
}

func (f *fakeFriendshipsRepo) GetEdge(ctx context.Context, key string) (*models.FriendshipEdge, error) {
	e, ok := f.edges[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeFriendshipsRepo) DeleteEdge(ctx context.Context, key string) error {
	delete(f.edges, key)
	return nil
}

func (f *fakeFriendshipsRepo) ListEdges(ctx context.Context, code string) ([]*models.FriendshipEdge, error) {
	var result []*models.FriendshipEdge
	for _, e := range f.edges {
		if e.MemberA == code || e.MemberB == code {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	users       *fakeUsersRepo
	checkins    *fakeCheckinsRepo
	messages    *fakeMessagesRepo
	reactions   *fakeReactionsRepo
	friendships *fakeFriendshipsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       newFakeUsersRepo(),
		checkins:    newFakeCheckinsRepo(),
		messages:    newFakeMessagesRepo(),
		reactions:   newFakeReactionsRepo(),
		friendships: newFakeFriendshipsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.users }
func (m *fakeRepoManager) Checkins(db dbx.DBTX) checkinsrepo.Repository       { return m.checkins }
func (m *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository       { return m.messages }
func (m *fakeRepoManager) Reactions(db dbx.DBTX) reactionsrepo.Repository     { return m.reactions }
func (m *fakeRepoManager) Friendships(db dbx.DBTX) friendshipsrepo.Repository { return m.friendships }
