// services/match_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"match-stake-system/models"
	"match-stake-system/utils"

	"github.com/puzpuzpuz/xsync/v4"
	"gorm.io/gorm"
)

// MatchService is the state machine for match creation, staking, settlement
// and timeout refund. It owns per-match escrow accounting: every mutating
// operation runs under that match's mutex and inside a single gorm
// transaction covering the state change, the ledger transfer and the event
// append — so a failed transfer rolls back the staked flag with it.
//
// Operations on distinct match ids proceed in parallel; the lock map only
// serializes check-then-act sequences on the same id.
type MatchService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Events  *EventService
	Roles   RoleConfig
	Timeout time.Duration

	locks *xsync.Map[string, *sync.Mutex]
}

func NewMatchService(db *gorm.DB, ledger *LedgerService, events *EventService, roles RoleConfig, timeout time.Duration) *MatchService {
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	return &MatchService{
		DB:      db,
		Ledger:  ledger,
		Events:  events,
		Roles:   roles,
		Timeout: timeout,
		locks:   xsync.NewMap[string, *sync.Mutex](),
	}
}

func (s *MatchService) lockFor(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu
}

// CreateMatch inserts a new match in the created state. Creator-role only.
func (s *MatchService) CreateMatch(id, player1, player2 string, stake int64, caller string) (*models.Match, error) {
	if err := s.Roles.Authorize(caller, RoleCreator); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidArgument)
	}
	if player1 == "" || player2 == "" {
		return nil, fmt.Errorf("%w: both players are required", ErrInvalidArgument)
	}
	if player1 == player2 {
		return nil, fmt.Errorf("%w: players must be distinct", ErrInvalidArgument)
	}
	// Cap keeps the 2× settlement payout within int64.
	if stake <= 0 || stake > math.MaxInt64/2 {
		return nil, fmt.Errorf("%w: stake %d out of range", ErrInvalidArgument, stake)
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	match := &models.Match{
		ID:      id,
		Player1: player1,
		Player2: player2,
		Stake:   stake,
		Status:  models.MatchStatusCreated,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Match
		if err := tx.First(&existing, "id = ?", id).Error; err == nil {
			return fmt.Errorf("%w: match id %s already used", ErrDuplicate, id)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		return s.Events.Append(tx, &models.MatchEvent{
			Type:         models.EventMatchCreated,
			MatchID:      &match.ID,
			Address:      player1,
			Counterparty: player2,
			Amount:       stake,
		})
	})
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("🆕 Match created: %s (%s vs %s, stake %d)", id, player1, player2, stake)
	return match, nil
}

// StakePlayer locks the caller's stake into the match custody account.
// The staked flag is flipped before the transfer, but both live in one
// transaction: a failed transfer never leaves a dangling flag.
func (s *MatchService) StakePlayer(id, caller string) (*models.Match, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: match %s", ErrNotFound, id)
			}
			return err
		}
		if !match.IsPlayer(caller) {
			return fmt.Errorf("%w: %s is not a player of match %s", ErrUnauthorized, caller, id)
		}
		if match.Status != models.MatchStatusCreated {
			return fmt.Errorf("%w: match %s is %s, staking requires created", ErrInvalidState, id, match.Status)
		}
		if match.HasStaked(caller) {
			return fmt.Errorf("%w: %s already staked on match %s", ErrInvalidState, caller, id)
		}

		if caller == match.Player1 {
			match.Player1Staked = true
		} else {
			match.Player2Staked = true
		}
		if match.Player1Staked && match.Player2Staked {
			now := time.Now().UTC()
			match.Status = models.MatchStatusStaked
			match.StakeStartTime = &now
		}
		if err := tx.Save(&match).Error; err != nil {
			return err
		}
		if err := s.Ledger.TransferTx(tx, caller, models.CustodyAddress(id), match.Stake); err != nil {
			return err
		}
		return s.Events.Append(tx, &models.MatchEvent{
			Type:    models.EventStaked,
			MatchID: &match.ID,
			Address: caller,
			Amount:  match.Stake,
		})
	})
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("🔒 Stake locked: match %s player %s (%d/2 staked)", id, caller, match.StakedCount())
	return &match, nil
}

// CommitResult settles a staked match, paying 2× stake from custody to the
// declared winner. Operator-role only. Once status leaves staked a second
// commit is structurally impossible — the status check rejects it.
func (s *MatchService) CommitResult(id, winner, caller string) (*models.Match, error) {
	if err := s.Roles.Authorize(caller, RoleOperator); err != nil {
		return nil, err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: match %s", ErrNotFound, id)
			}
			return err
		}
		if match.Status != models.MatchStatusStaked {
			return fmt.Errorf("%w: match %s is %s, settlement requires staked", ErrInvalidState, id, match.Status)
		}
		if !match.IsPlayer(winner) {
			return fmt.Errorf("%w: winner %s is not a player of match %s", ErrInvalidArgument, winner, id)
		}

		match.Status = models.MatchStatusSettled
		match.Winner = &winner
		if err := tx.Save(&match).Error; err != nil {
			return err
		}
		payout := 2 * match.Stake
		if err := s.Ledger.TransferTx(tx, models.CustodyAddress(id), winner, payout); err != nil {
			return err
		}
		return s.Events.Append(tx, &models.MatchEvent{
			Type:    models.EventSettled,
			MatchID: &match.ID,
			Address: winner,
			Amount:  payout,
		})
	})
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("🏆 Match settled: %s winner %s paid %d", id, winner, 2*match.Stake)
	return &match, nil
}

// Refund returns each staked player's stake once the timeout has elapsed.
// Any caller may invoke it; only fully-staked matches can reach this path,
// since StakeStartTime is set only when both players are in.
func (s *MatchService) Refund(id, caller string) (*models.Match, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: match %s", ErrNotFound, id)
			}
			return err
		}
		if match.Status != models.MatchStatusStaked {
			return fmt.Errorf("%w: match %s is %s, refund requires staked", ErrInvalidState, id, match.Status)
		}
		if match.StakeStartTime == nil {
			return fmt.Errorf("%w: match %s has no stake start time", ErrInvalidState, id)
		}
		if time.Now().UTC().Before(match.StakeStartTime.Add(s.Timeout)) {
			return fmt.Errorf("%w: match %s refundable at %s", ErrTimeoutNotReached,
				id, match.StakeStartTime.Add(s.Timeout).Format(time.RFC3339))
		}

		match.Status = models.MatchStatusRefunded
		if err := tx.Save(&match).Error; err != nil {
			return err
		}
		for _, player := range []string{match.Player1, match.Player2} {
			if !match.HasStaked(player) {
				continue
			}
			if err := s.Ledger.TransferTx(tx, models.CustodyAddress(id), player, match.Stake); err != nil {
				return err
			}
			if err := s.Events.Append(tx, &models.MatchEvent{
				Type:    models.EventRefunded,
				MatchID: &match.ID,
				Address: player,
				Amount:  match.Stake,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("↩️ Match refunded: %s (triggered by %s)", id, caller)
	return &match, nil
}

// GetMatch returns the match record, read-only.
func (s *MatchService) GetMatch(id string) (*models.Match, error) {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &match, nil
}

// CanRefund reports whether a refund would currently succeed.
func (s *MatchService) CanRefund(id string) (bool, error) {
	match, err := s.GetMatch(id)
	if err != nil {
		return false, err
	}
	if match.Status != models.MatchStatusStaked || match.StakeStartTime == nil {
		return false, nil
	}
	return !time.Now().UTC().Before(match.StakeStartTime.Add(s.Timeout)), nil
}
