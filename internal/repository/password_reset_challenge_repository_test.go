package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cortexa-affect/internal/constants"
	"github.com/cortexa-affect/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPasswordResetRepositoryTest(t *testing.T) (*GormPasswordResetChallengeRepository, *gorm.DB, models.Account) {
	t.Helper()
	dsn := fmt.Sprintf("file:password_reset_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	account := models.Account{
		Email:        "repo@b.com",
		PasswordHash: "hash",
		Status:       constants.AccountStatusActive,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	return NewPasswordResetChallengeRepository(db), db, account
}

func newTestChallenge(account models.Account, now time.Time) *models.PasswordResetChallenge {
	return &models.PasswordResetChallenge{
		UserID:    account.ID,
		Email:     account.Email,
		CodeHash:  "hash",
		CodeSalt:  "salt",
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
}

func TestPasswordResetChallengeReplaceKeepsSingleRow(t *testing.T) {
	repo, _, account := setupPasswordResetRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	first := newTestChallenge(account, now)
	if err := repo.Replace(first); err != nil {
		t.Fatalf("replace first failed: %v", err)
	}
	second := newTestChallenge(account, now.Add(time.Second))
	if err := repo.Replace(second); err != nil {
		t.Fatalf("replace second failed: %v", err)
	}

	total, err := repo.CountByUserID(account.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("challenge count want 1 got %d", total)
	}
	latest, err := repo.GetLatestByEmail(account.Email)
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("latest challenge should be the replacement")
	}
}

func TestPasswordResetChallengeReplaceRequiresOwner(t *testing.T) {
	repo, _, _ := setupPasswordResetRepositoryTest(t)
	if err := repo.Replace(&models.PasswordResetChallenge{Email: "x@b.com"}); err == nil {
		t.Fatalf("replace without owner should fail")
	}
}

func TestPasswordResetChallengeLookupMissing(t *testing.T) {
	repo, _, _ := setupPasswordResetRepositoryTest(t)

	got, err := repo.GetLatestByEmail("missing@b.com")
	if err != nil || got != nil {
		t.Fatalf("missing email want nil,nil got %v,%v", got, err)
	}
	got, err = repo.GetLatestByEmailAndSessionToken("repo@b.com", "nope")
	if err != nil || got != nil {
		t.Fatalf("missing token want nil,nil got %v,%v", got, err)
	}
}

func TestPasswordResetChallengeRecordFailedAttemptLocksAtMax(t *testing.T) {
	repo, _, account := setupPasswordResetRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	challenge := newTestChallenge(account, now)
	if err := repo.Replace(challenge); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	lockUntil := now.Add(15 * time.Minute)

	for i := 1; i <= 2; i++ {
		updated, err := repo.RecordFailedAttempt(challenge.ID, 3, lockUntil)
		if err != nil {
			t.Fatalf("record attempt %d failed: %v", i, err)
		}
		if updated.Attempts != i || updated.LockedUntil != nil {
			t.Fatalf("attempt %d: want attempts=%d unlocked, got %d %v", i, i, updated.Attempts, updated.LockedUntil)
		}
	}
	updated, err := repo.RecordFailedAttempt(challenge.ID, 3, lockUntil)
	if err != nil {
		t.Fatalf("record final attempt failed: %v", err)
	}
	if updated.Attempts != 3 || updated.LockedUntil == nil {
		t.Fatalf("third attempt should lock, got attempts=%d locked=%v", updated.Attempts, updated.LockedUntil)
	}
	if !updated.IsLocked(now) {
		t.Fatalf("challenge should be locked at now")
	}

	if _, err := repo.RecordFailedAttempt("missing", 3, lockUntil); err == nil {
		t.Fatalf("missing challenge should return error")
	}
}

func TestPasswordResetChallengeVerifyAndConsume(t *testing.T) {
	repo, _, account := setupPasswordResetRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	challenge := newTestChallenge(account, now)
	if err := repo.Replace(challenge); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if _, err := repo.RecordFailedAttempt(challenge.ID, 5, now.Add(time.Minute)); err != nil {
		t.Fatalf("record attempt failed: %v", err)
	}

	ok, err := repo.MarkVerified(challenge.ID, now, "token-1", now.Add(15*time.Minute))
	if err != nil || !ok {
		t.Fatalf("mark verified want true,nil got %v,%v", ok, err)
	}
	verified, err := repo.GetLatestByEmailAndSessionToken(account.Email, "token-1")
	if err != nil || verified == nil {
		t.Fatalf("lookup by token failed: %v", err)
	}
	if verified.Attempts != 0 || verified.VerifiedAt == nil {
		t.Fatalf("verification should reset attempts and set verified_at")
	}

	ok, err = repo.MarkConsumed(challenge.ID, now.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("mark consumed want true,nil got %v,%v", ok, err)
	}
	ok, err = repo.MarkConsumed(challenge.ID, now.Add(2*time.Minute))
	if err != nil || ok {
		t.Fatalf("second consume want false,nil got %v,%v", ok, err)
	}
	ok, err = repo.MarkVerified(challenge.ID, now, "token-2", now.Add(15*time.Minute))
	if err != nil || ok {
		t.Fatalf("verify after consume want false,nil got %v,%v", ok, err)
	}
}

func TestPasswordResetChallengeWithTxRollsBack(t *testing.T) {
	repo, db, account := setupPasswordResetRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	errAbort := errors.New("abort")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Replace(newTestChallenge(account, now)); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("expected abort error, got: %v", err)
	}
	total, err := repo.CountByUserID(account.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected rollback to discard challenge, got %d rows", total)
	}
}

func TestPasswordResetChallengeDeleteStale(t *testing.T) {
	repo, db, account := setupPasswordResetRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	cutoff := now.Add(-24 * time.Hour)

	old := now.Add(-48 * time.Hour)
	stale := newTestChallenge(account, old)
	staleSession := old.Add(15 * time.Minute)
	stale.SessionTokenExpiresAt = &staleSession

	lockedOld := newTestChallenge(account, old)
	lockedUntil := now.Add(time.Hour)
	lockedOld.LockedUntil = &lockedUntil

	fresh := newTestChallenge(account, now)

	for _, challenge := range []*models.PasswordResetChallenge{stale, lockedOld, fresh} {
		if err := db.Create(challenge).Error; err != nil {
			t.Fatalf("create challenge failed: %v", err)
		}
	}

	deleted, err := repo.DeleteStale(cutoff)
	if err != nil {
		t.Fatalf("delete stale failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 stale challenge deleted, got %d", deleted)
	}
	var remaining []models.PasswordResetChallenge
	if err := db.Order("created_at asc").Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining failed: %v", err)
	}
	if len(remaining) != 2 || remaining[0].ID != lockedOld.ID || remaining[1].ID != fresh.ID {
		t.Fatalf("unexpected remaining challenges: %+v", remaining)
	}
}
