package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"flint/internal/domain/account"
	accountsync "flint/internal/domain/sync"
	"flint/internal/domain/user"
)

// AccountSyncJob refreshes one user's connected accounts: every bank
// enrollment they have, then their brokerage accounts.
type AccountSyncJob struct {
	userID   int64
	accounts *account.Service
	syncer   *accountsync.Service
	users    *user.Service
}

// NewAccountSyncJob creates a new account sync job for a user
func NewAccountSyncJob(userID int64, accounts *account.Service, syncer *accountsync.Service, users *user.Service) *AccountSyncJob {
	return &AccountSyncJob{
		userID:   userID,
		accounts: accounts,
		syncer:   syncer,
		users:    users,
	}
}

// Execute runs the account sync job
func (j *AccountSyncJob) Execute(ctx context.Context) error {
	log.Printf("Starting account sync for user %d", j.userID)

	existing, err := j.accounts.ListAccounts(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	synced, failed := 0, 0

	// One enrollment can back several accounts; dedupe on the token.
	seen := make(map[string]bool)
	for _, acc := range existing {
		if acc.Provider != account.ProviderTeller || acc.AccessToken == "" || seen[acc.AccessToken] {
			continue
		}
		seen[acc.AccessToken] = true

		result, err := j.syncer.SyncTeller(ctx, j.userID, acc.AccessToken)
		if err != nil {
			log.Printf("Account sync for user %d: bank sync failed: %v", j.userID, err)
			failed++
			continue
		}
		synced += result.Synced
		failed += result.Failed
	}

	creds, err := j.users.Credentials(ctx, j.userID)
	if err == nil {
		result, err := j.syncer.SyncSnapTrade(ctx, j.userID, creds)
		if err != nil {
			log.Printf("Account sync for user %d: brokerage sync failed: %v", j.userID, err)
			failed++
		} else {
			synced += result.Synced
			failed += result.Failed
		}
	} else if !errors.Is(err, user.ErrNotRegistered) {
		return fmt.Errorf("loading brokerage credentials: %w", err)
	}

	if failed > 0 {
		// Surface partial failures so the run is recorded as an error.
		return fmt.Errorf("sync completed with %d failures (%d synced)", failed, synced)
	}

	log.Printf("Account sync for user %d completed: %d accounts", j.userID, synced)
	return nil
}

// UserID returns the user ID associated with this job
func (j *AccountSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job
func (j *AccountSyncJob) Description() string {
	return fmt.Sprintf("Account sync for user %d", j.userID)
}
