package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/automation"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// fakeCache is an in-memory RedisClient with real TTL behavior.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
	now     func() time.Time

	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *fakeCache) expired(key string) bool {
	deadline, ok := c.expires[key]
	return ok && c.now().After(deadline)
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	val, ok := c.values[key]
	if !ok || c.expired(key) {
		delete(c.values, key)
		delete(c.expires, key)
		return "", redis.ErrKeyNotFound
	}
	return val, nil
}

func (c *fakeCache) GetDel(ctx context.Context, key string) (string, error) {
	val, err := c.Get(ctx, key)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	delete(c.values, key)
	delete(c.expires, key)
	c.mu.Unlock()
	return val, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = fmt.Sprint(value)
	if expiration > 0 {
		c.expires[key] = c.now().Add(expiration)
	} else {
		delete(c.expires, key)
	}
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	_, ok := c.values[key]
	c.mu.Unlock()
	if ok {
		return false, nil
	}
	return true, c.Set(ctx, key, value, expiration)
}

func (c *fakeCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = c.now().Add(expiration)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	delete(c.expires, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

// fakeRobloxClient counts calls so cache and retry behavior is observable.
type fakeRobloxClient struct {
	universeID int64
	passes     []models.GamePass
	players    []models.PlayerData
	games      []models.GameInfo
	balance    int64

	resolveErr error
	passesErr  error
	playersErr []error
	gamesErr   []error
	balanceErr error

	resolveCalls int
	passesCalls  int
	playerCalls  int
	gameCalls    int
	balanceCalls int
}

func (f *fakeRobloxClient) ResolveUniverse(ctx context.Context, gameID int64) (int64, error) {
	f.resolveCalls++
	return f.universeID, f.resolveErr
}

func (f *fakeRobloxClient) FetchGamePasses(ctx context.Context, universeID int64) ([]models.GamePass, error) {
	f.passesCalls++
	if f.passesErr != nil {
		return nil, f.passesErr
	}
	return f.passes, nil
}

func (f *fakeRobloxClient) SearchPlayers(ctx context.Context, keyword string) ([]models.PlayerData, error) {
	f.playerCalls++
	if len(f.playersErr) > 0 {
		err := f.playersErr[0]
		f.playersErr = f.playersErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.players, nil
}

func (f *fakeRobloxClient) PlayerGames(ctx context.Context, playerID int64) ([]models.GameInfo, error) {
	f.gameCalls++
	if len(f.gamesErr) > 0 {
		err := f.gamesErr[0]
		f.gamesErr = f.gamesErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.games, nil
}

func (f *fakeRobloxClient) CurrencyBalance(ctx context.Context, userID int64) (int64, error) {
	f.balanceCalls++
	return f.balance, f.balanceErr
}

type fakeTransactionRepo struct {
	mu        sync.Mutex
	stored    map[uuid.UUID]*models.Transaction
	createErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{stored: make(map[uuid.UUID]*models.Transaction)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tx
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.stored[tx.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.stored[id]
	if !ok {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) ListByPlayer(ctx context.Context, robloxName string) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, tx := range r.stored {
		if tx.RobloxUsername == robloxName {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.stored[id]
	if !ok {
		return pkgerrors.ErrTransactionNotFound
	}
	tx.Status = status
	return nil
}

func (r *fakeTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stored[id]; !ok {
		return pkgerrors.ErrTransactionNotFound
	}
	delete(r.stored, id)
	return nil
}

type fakeBonusRepo struct {
	mu     sync.Mutex
	byName map[string]*models.Bonuses
}

func newFakeBonusRepo() *fakeBonusRepo {
	return &fakeBonusRepo{byName: make(map[string]*models.Bonuses)}
}

func (r *fakeBonusRepo) Create(ctx context.Context, bonus *models.Bonuses) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[bonus.RobloxName]; ok {
		return pkgerrors.ErrConflict
	}
	cp := *bonus
	r.byName[bonus.RobloxName] = &cp
	return nil
}

func (r *fakeBonusRepo) GetByName(ctx context.Context, robloxName string) (*models.Bonuses, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bonus, ok := r.byName[robloxName]
	if !ok {
		return nil, pkgerrors.ErrBonusNotFound
	}
	cp := *bonus
	return &cp, nil
}

func (r *fakeBonusRepo) AwardTask(ctx context.Context, robloxName string, task models.BonusTask, reward int) (*models.Bonuses, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bonus, ok := r.byName[robloxName]
	if !ok {
		return nil, pkgerrors.ErrBonusNotFound
	}
	for _, done := range bonus.CompletedTasks {
		if done == string(task) {
			return nil, pkgerrors.ErrTaskAlreadyCompleted
		}
	}
	bonus.CompletedTasks = append(bonus.CompletedTasks, string(task))
	bonus.Bonus += reward
	cp := *bonus
	return &cp, nil
}

func (r *fakeBonusRepo) CreditReferral(ctx context.Context, robloxName string, amount int, activatedFor string) (*models.Bonuses, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bonus, ok := r.byName[robloxName]
	if !ok {
		return nil, pkgerrors.ErrBonusNotFound
	}
	bonus.Bonus += amount
	bonus.ActivatedFor = activatedFor
	cp := *bonus
	return &cp, nil
}

func (r *fakeBonusRepo) Delete(ctx context.Context, robloxName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[robloxName]; !ok {
		return pkgerrors.ErrBonusNotFound
	}
	delete(r.byName, robloxName)
	return nil
}

type fakePoller struct {
	status automation.MarkerStatus
	err    error
	calls  int
}

func (p *fakePoller) WaitForMarker(ctx context.Context, timeout time.Duration) (automation.MarkerStatus, error) {
	p.calls++
	if p.status == "" {
		return automation.MarkerAbsent, p.err
	}
	return p.status, p.err
}

type sentMessage struct {
	key   int64
	value []byte
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (d *fakeDispatcher) Send(ctx context.Context, key int64, value []byte) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{key: key, value: value})
	return nil
}

func (d *fakeDispatcher) Close() error { return nil }

type fakeSessionRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*models.SessionToken
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{tokens: make(map[uuid.UUID]*models.SessionToken)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, token *models.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return nil, pkgerrors.ErrSessionTokenNotFound
	}
	cp := *token
	return &cp, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return pkgerrors.ErrSessionTokenNotFound
	}
	delete(r.tokens, id)
	return nil
}

type fakeBotRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.BotToken
}

func newFakeBotRepo() *fakeBotRepo {
	return &fakeBotRepo{byID: make(map[int64]*models.BotToken)}
}

func (r *fakeBotRepo) Create(ctx context.Context, bot *models.BotToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Token == bot.Token {
			return pkgerrors.ErrTokenExists
		}
	}
	r.nextID++
	bot.ID = r.nextID
	cp := *bot
	r.byID[bot.ID] = &cp
	return nil
}

func (r *fakeBotRepo) GetByID(ctx context.Context, id int64) (*models.BotToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.ErrBotNotFound
	}
	cp := *bot
	return &cp, nil
}

func (r *fakeBotRepo) GetByToken(ctx context.Context, token string) (*models.BotToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bot := range r.byID {
		if bot.Token == token {
			cp := *bot
			return &cp, nil
		}
	}
	return nil, pkgerrors.ErrBotNotFound
}

func (r *fakeBotRepo) List(ctx context.Context) ([]models.BotToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BotToken
	for _, bot := range r.byID {
		out = append(out, *bot)
	}
	return out, nil
}

func (r *fakeBotRepo) Update(ctx context.Context, id int64, upd repository.BotTokenUpdate) (*models.BotToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.ErrBotNotFound
	}
	if upd.RobloxName != nil {
		bot.RobloxName = *upd.RobloxName
	}
	if upd.Token != nil {
		bot.Token = *upd.Token
	}
	if upd.IsActive != nil {
		bot.IsActive = *upd.IsActive
	}
	if upd.IsSelected != nil {
		bot.IsSelected = *upd.IsSelected
	}
	cp := *bot
	return &cp, nil
}

func (r *fakeBotRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pkgerrors.ErrBotNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeBotRepo) SelectExclusive(ctx context.Context, id int64) (*models.BotToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.ErrBotNotFound
	}
	if !bot.IsActive {
		return nil, pkgerrors.ErrBotNotActive
	}
	if bot.IsSelected {
		return nil, pkgerrors.ErrBotAlreadySelected
	}
	bot.IsSelected = true
	cp := *bot
	return &cp, nil
}
