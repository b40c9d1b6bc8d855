// Package services contains the application services of the TaskMarket data
// layer. Every mutation goes through the sync engine: it lands in the local
// store immediately and is replicated to the remote store asynchronously.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmarket/internal/authx"
	"taskmarket/internal/common"
	"taskmarket/internal/localstore"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

// AccountService manages registration, sign-in and posting permits.
//
// Contract:
//   - Create: register with a unique username; the free posting permit is
//     unspent on a fresh account.
//   - SignIn: verify credentials and persist the session singleton.
//   - SignOut: clear the session singleton.
//   - Current: return the signed-in account, or common.ErrNotSignedIn.
//   - ConsumePermit: spend the free permit first, then a paid one; returns
//     common.ErrNoPermits when neither is left.
type AccountService interface {
	Create(ctx context.Context, username, password, fullName string) (*models.Account, error)
	SignIn(ctx context.Context, username, password string) (*models.Account, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (*models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	ConsumePermit(ctx context.Context, accountID int64) error
	AddPermits(ctx context.Context, accountID int64, n int) error
}

type accountService struct {
	engine  *syncer.Engine
	session *localstore.Store
}

// NewAccountService binds the service to the sync engine and the session
// store.
func NewAccountService(engine *syncer.Engine, session *localstore.Store) AccountService {
	return &accountService{engine: engine, session: session}
}

func (s *accountService) Create(ctx context.Context, username, password, fullName string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password required: %w", common.ErrValidation)
	}

	existing, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrDuplicateUsername
	}

	hash, err := authx.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    time.Now().UTC(),
	}
	doc, err := models.ToDoc(account)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Create(ctx, models.CollectionAccounts, doc)
	if err != nil {
		return nil, err
	}

	out := &models.Account{}
	if err := models.FromDoc(created, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *accountService) SignIn(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, common.ErrInvalidCredentials
	}
	if !authx.VerifyPassword(account.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	sess := &models.Session{
		AccountID: account.ID,
		Username:  account.Username,
		SignedIn:  time.Now().UTC(),
	}
	if err := s.session.SetSession(ctx, sess); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) SignOut(ctx context.Context) error {
	return s.session.ClearSession(ctx)
}

func (s *accountService) Current(ctx context.Context) (*models.Account, error) {
	sess, err := s.session.GetSession(ctx)
	if err != nil {
		return nil, common.ErrNotSignedIn
	}
	account, err := s.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, common.ErrNotSignedIn
	}
	return account, nil
}

func (s *accountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	doc, err := s.engine.Get(ctx, models.CollectionAccounts, id)
	if err != nil {
		return nil, err
	}
	account := &models.Account{}
	if err := models.FromDoc(doc, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ConsumePermit spends one posting permit: the free one if it is still
// unspent, otherwise a paid one.
func (s *accountService) ConsumePermit(ctx context.Context, accountID int64) error {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	switch {
	case !account.FreePermitUsed:
		account.FreePermitUsed = true
	case account.Permits > 0:
		account.Permits--
	default:
		return common.ErrNoPermits
	}

	return s.put(ctx, account)
}

// AddPermits credits paid posting permits, typically after a recorded
// payment.
func (s *accountService) AddPermits(ctx context.Context, accountID int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("permit count must be positive: %w", common.ErrValidation)
	}
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	account.Permits += n
	return s.put(ctx, account)
}

func (s *accountService) put(ctx context.Context, account *models.Account) error {
	doc, err := models.ToDoc(account)
	if err != nil {
		return err
	}
	_, err = s.engine.Put(ctx, models.CollectionAccounts, doc)
	return err
}

func (s *accountService) findByUsername(ctx context.Context, username string) (*models.Account, error) {
	docs, err := s.engine.List(ctx, models.CollectionAccounts)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if u, _ := doc["username"].(string); u == username {
			account := &models.Account{}
			if err := models.FromDoc(doc, account); err != nil {
				return nil, err
			}
			return account, nil
		}
	}
	return nil, nil
}
