package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/mdbconf"
	"github.com/madkins23/mongo-users/mdbid"
)

// State of a Manager connection.
type State int

const (
	Unconnected State = iota
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Connector opens the Store a Manager works against.
type Connector interface {
	Connect(ctx context.Context, conn *mdbconf.Connection) (Store, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, conn *mdbconf.Connection) (Store, error)

func (fn ConnectorFunc) Connect(ctx context.Context, conn *mdbconf.Connection) (Store, error) {
	return fn(ctx, conn)
}

// StoreConnector returns a Connector that always hands out the given store.
func StoreConnector(store Store) Connector {
	return ConnectorFunc(func(context.Context, *mdbconf.Connection) (Store, error) {
		return store, nil
	})
}

// Manager creates, fetches, updates and deletes user accounts.
// A Manager starts Unconnected and becomes Connected or Failed on Connect.
// Failed is final, build a new Manager to try again.
// A Manager is not safe for concurrent use.
type Manager struct {
	connector Connector
	store     Store
	state     State
	logger    *zap.Logger
	validate  *validator.Validate
	hashCost  int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger, the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithHashCost sets the bcrypt cost used for passwords.
func WithHashCost(cost int) Option {
	return func(m *Manager) { m.hashCost = cost }
}

// WithClock replaces the source of created and last_updated times.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(connector Connector, options ...Option) *Manager {
	m := &Manager{
		connector: connector,
		logger:    zap.NewNop(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	return m.state
}

// Connect opens the store described by the connection.
func (m *Manager) Connect(ctx context.Context, conn *mdbconf.Connection) *Result {
	result := newResult()
	switch m.state {
	case Connected:
		return result.fail(fmt.Errorf("%w: already connected", ErrConnection))
	case Failed:
		return result.fail(fmt.Errorf("%w: earlier connect failed, create a new manager", ErrConnection))
	}
	if conn == nil {
		m.state = Failed
		return result.fail(fmt.Errorf("%w: no connection configuration", ErrConnection))
	}

	store, err := m.connector.Connect(ctx, conn)
	if err != nil {
		m.state = Failed
		if !errors.Is(err, ErrConnection) {
			err = fmt.Errorf("%w: %w", ErrConnection, err)
		}
		m.logger.Error("Connect failed", zap.Stringer("connection", conn), zap.Error(err))
		return result.fail(err)
	}

	m.store = store
	m.state = Connected
	m.logger.Info("Connected", zap.Stringer("connection", conn))
	result.Info["database"] = conn.Database()
	result.Info["table"] = conn.Table()
	return result.succeed()
}

// Close releases the store, the Manager may be connected again afterwards.
func (m *Manager) Close(ctx context.Context) error {
	if m.state != Connected {
		return nil
	}
	m.state = Unconnected
	store := m.store
	m.store = nil
	return store.Close(ctx)
}

func (m *Manager) ready(result *Result) bool {
	if m.state != Connected {
		result.fail(fmt.Errorf("%w (%s)", ErrNotConnected, m.state))
		return false
	}
	return true
}

// ValidateNewUserData checks the candidate account and returns the hash of its password.
// The hash is empty when the candidate is rejected.
func (m *Manager) ValidateNewUserData(ctx context.Context, candidate NewUser) (string, *Result) {
	result := newResult()
	if !m.ready(result) {
		return "", result
	}
	if err := m.validate.Struct(candidate); err != nil {
		for _, problem := range validationProblems(err) {
			result.fail(fmt.Errorf("%w: %s", ErrValidation, problem))
		}
		return "", result
	}

	exists, err := m.store.Exists(ctx, candidate.Username, candidate.Email)
	if err != nil {
		return "", result.fail(fmt.Errorf("check existing account: %w", err))
	} else if exists {
		return "", result.fail(fmt.Errorf("%w: username %s or email %s already in use",
			ErrDuplicate, candidate.Username, candidate.Email))
	}

	hash, err := HashPassword(candidate.Password, m.hashCost)
	if err != nil {
		return "", result.fail(fmt.Errorf("%w: %w", ErrValidation, err))
	}
	return hash, result.succeed()
}

// AddUser stores a new account, the record password must already be hashed.
// A GUID and creation time are assigned to the record.
func (m *Manager) AddUser(ctx context.Context, rec *Record) *Result {
	result := newResult()
	if !m.ready(result) {
		return result
	}
	if err := m.prepare(rec); err != nil {
		return result.fail(err)
	}

	id, err := m.store.Insert(ctx, rec)
	if err != nil {
		m.logger.Warn("Add user failed", zap.String("username", rec.Username), zap.Error(err))
		return result.fail(fmt.Errorf("add user %s: %w", rec.Username, err))
	}

	m.logger.Info("Added user", zap.String("guid", rec.Token))
	result.Info["guid"] = rec.Token
	result.Info["id"] = id
	return result.succeed()
}

var errTooFewRecords = errors.New("at least two records are required, use AddUser for one")

// AddUsers stores several new accounts at once.
// Records are inserted independently so one failure does not stop the others.
func (m *Manager) AddUsers(ctx context.Context, recs []*Record) *Result {
	result := newResult()
	if !m.ready(result) {
		return result
	}
	if len(recs) < 2 {
		return result.fail(fmt.Errorf("%w: %w", ErrValidation, errTooFewRecords))
	}
	guids := make([]string, 0, len(recs))
	for i, rec := range recs {
		if err := m.prepare(rec); err != nil {
			result.fail(fmt.Errorf("record #%d: %w", i, err))
			continue
		}
		guids = append(guids, rec.Token)
	}
	if len(result.Errors) > 0 {
		return result
	}

	inserted, err := m.store.InsertMany(ctx, recs)
	result.Info["inserted"] = inserted
	if err != nil {
		m.logger.Warn("Add users failed", zap.Int("inserted", inserted), zap.Error(err))
		return result.fail(fmt.Errorf("add users: %w", err))
	}

	m.logger.Info("Added users", zap.Strings("guids", guids))
	result.Info["guids"] = guids
	return result.succeed()
}

func (m *Manager) prepare(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("%w: no record", ErrValidation)
	}
	var problems []string
	if rec.Username == "" {
		problems = append(problems, "username is required")
	}
	if err := m.validate.Var(rec.Email, "required,email"); err != nil {
		problems = append(problems, "email must be a valid email address")
	}
	if err := checkHashed(rec.Password); err != nil {
		problems = append(problems, err.Error())
	}
	if rec.Token != "" && !mdbid.IsGUID(rec.Token) {
		problems = append(problems, "guid must be 36 upper case characters")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, ", "))
	}

	rec.AssignGUID()
	rec.Created = m.now()
	rec.LastUpdated = time.Time{}
	return nil
}

// FetchUser returns the account named by the key, nil when there is none.
func (m *Manager) FetchUser(ctx context.Context, key Key) (*Record, *Result) {
	result := newResult()
	if !m.ready(result) {
		return nil, result
	}
	if key.IsZero() {
		return nil, result.fail(fmt.Errorf("%w: empty lookup key", ErrValidation))
	}

	rec, err := m.store.Find(ctx, key)
	if err != nil {
		return nil, result.fail(fmt.Errorf("fetch user %s: %w", key, err))
	}

	result.Info["guid"] = rec.Token
	return rec, result.succeed()
}

// UpdateUser changes only the fields set in the update on the account with the GUID.
// A new password is hashed before it is stored.
func (m *Manager) UpdateUser(ctx context.Context, guid string, upd Update) *Result {
	result := newResult()
	if !m.ready(result) {
		return result
	}
	key := ByGUID(guid)
	if !mdbid.IsGUID(key.Value()) {
		return result.fail(fmt.Errorf("%w: %q is not a GUID", ErrValidation, guid))
	}
	if upd.IsEmpty() {
		return result.fail(fmt.Errorf("%w: nothing to update", ErrValidation))
	}
	if err := m.validate.Struct(upd); err != nil {
		for _, problem := range validationProblems(err) {
			result.fail(fmt.Errorf("%w: %s", ErrValidation, problem))
		}
		return result
	}
	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password, m.hashCost)
		if err != nil {
			return result.fail(fmt.Errorf("%w: %w", ErrValidation, err))
		}
		upd.Password = &hash
	}

	count, err := m.store.Update(ctx, key.Value(), upd, m.now())
	if err != nil {
		return result.fail(fmt.Errorf("update user %s: %w", key.Value(), err))
	}
	if count.Matched == 0 {
		return result.fail(fmt.Errorf("update user %s: %w", key.Value(), ErrNotFound))
	}

	m.logger.Info("Updated user", zap.String("guid", key.Value()), zap.Int64("modified", count.Modified))
	result.Info["matched"] = count.Matched
	result.Info["modified"] = count.Modified
	return result.succeed()
}

// DeleteUser removes the account named by the key.
func (m *Manager) DeleteUser(ctx context.Context, key Key) *Result {
	result := newResult()
	if !m.ready(result) {
		return result
	}
	if key.IsZero() {
		return result.fail(fmt.Errorf("%w: empty lookup key", ErrValidation))
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return result.fail(fmt.Errorf("delete user %s: %w", key, err))
	}

	m.logger.Info("Deleted user", zap.Stringer("key", key))
	result.Info["deleted"] = 1
	return result.succeed()
}

// VerifyPassword checks a plaintext password against a stored hash.
func (m *Manager) VerifyPassword(hash, password string) bool {
	return VerifyPassword(hash, password)
}

func validationProblems(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		problems = append(problems, describe(fieldErr))
	}
	return problems
}

func describe(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Field())
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return fmt.Sprintf("%s: %s failed validation", field, fmt.Sprint(fieldErr.Value()))
	case "min", "max":
		if field == "password" {
			return "password incorrect length, must be between 8 and 16 characters"
		}
		return fmt.Sprintf("%s must have length %s %s", field, fieldErr.Tag(), fieldErr.Param())
	}
	return fmt.Sprintf("%s failed %s check", field, fieldErr.Tag())
}
