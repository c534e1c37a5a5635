// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking pool: one time-locked native deposit per
// participant, paid back with a linear reward funded by the pool balance.
package staking

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/builtin/solidity"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
)

var logger = log.WithContext("pkg", "staking")

var (
	stakesSlot      = gig.BytesToBytes32([]byte("stakes"))
	userTotalsSlot  = gig.BytesToBytes32([]byte("user-totals"))
	totalStakedSlot = gig.BytesToBytes32([]byte("total-staked"))
	ownerSlot       = gig.BytesToBytes32([]byte("owner"))
)

// Staking implements native methods of `StakingPool` contract.
type Staking struct {
	sctx        *solidity.Context
	escrow      gig.Address
	stakes      *solidity.Mapping[gig.Address, *Stake]
	userTotals  *solidity.Mapping[gig.Address, *big.Int]
	totalStaked *solidity.Uint256
	owner       *solidity.Address
}

// New creates the pool bound to the escrow engine address.
func New(sctx *solidity.Context, escrow gig.Address) (*Staking, error) {
	if escrow.IsZero() {
		return nil, reverts.InvalidAddress
	}
	return &Staking{
		sctx:        sctx,
		escrow:      escrow,
		stakes:      solidity.NewMapping[gig.Address, *Stake](sctx, stakesSlot),
		userTotals:  solidity.NewMapping[gig.Address, *big.Int](sctx, userTotalsSlot),
		totalStaked: solidity.NewUint256(sctx, totalStakedSlot),
		owner:       solidity.NewAddress(sctx, ownerSlot),
	}, nil
}

func (s *Staking) Address() gig.Address   { return s.sctx.Address() }
func (s *Staking) GigEscrow() gig.Address { return s.escrow }

// Owner returns the deployer recorded at genesis.
func (s *Staking) Owner() (gig.Address, error) {
	return s.owner.Get()
}

// InitOwner records the deployer. It can be done once.
func (s *Staking) InitOwner(owner gig.Address) error {
	current, err := s.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.Unauthorized
	}
	s.owner.Set(&owner, true)
	return nil
}

// GetStake returns the stake of user, a zero stake if none.
func (s *Staking) GetStake(user gig.Address) (*Stake, error) {
	stake, err := s.stakes.Get(user)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return &Stake{Amount: new(big.Int)}, nil
	}
	return stake, nil
}

func (s *Staking) HasActiveStake(user gig.Address) (bool, error) {
	stake, err := s.GetStake(user)
	if err != nil {
		return false, err
	}
	return stake.Active, nil
}

// TotalStaked returns the amount currently staked by user.
func (s *Staking) TotalStaked(user gig.Address) (*big.Int, error) {
	total, err := s.userTotals.Get(user)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return new(big.Int), nil
	}
	return total, nil
}

// GetTotalStaked returns the amount staked by everyone.
func (s *Staking) GetTotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// PoolBalance returns the native balance held by the pool, principals included.
func (s *Staking) PoolBalance() (*big.Int, error) {
	return s.sctx.Balance()
}

// Stake locks value for caller. The value must already be credited to the pool.
func (s *Staking) Stake(caller gig.Address, value *big.Int, now uint64) error {
	if value.Cmp(gig.MinStake) < 0 {
		return reverts.InvalidAmount
	}
	current, err := s.GetStake(caller)
	if err != nil {
		return err
	}
	if current.Active {
		return reverts.InvalidAmount
	}

	stake := &Stake{
		Amount:     new(big.Int).Set(value),
		Timestamp:  now,
		UnlockTime: now + gig.StakingDuration,
		Active:     true,
	}
	if current.IsEmpty() {
		err = s.stakes.Insert(caller, stake)
	} else {
		err = s.stakes.Update(caller, stake)
	}
	if err != nil {
		return err
	}
	if err := s.addUserTotal(caller, value); err != nil {
		return err
	}
	if err := s.totalStaked.Add(value); err != nil {
		return err
	}
	return s.sctx.Emit(events.Staked, []any{caller}, stake.Amount, new(big.Int).SetUint64(stake.UnlockTime))
}

// Unstake pays back the stake of caller plus its reward.
// The stake is closed before the payout; a short pool fails the whole call.
func (s *Staking) Unstake(caller gig.Address, now uint64) error {
	stake, err := s.GetStake(caller)
	if err != nil {
		return err
	}
	if !stake.Active {
		return reverts.NoStake
	}
	if now < stake.UnlockTime {
		return reverts.StakeLocked
	}
	reward, err := s.reward(stake, now)
	if err != nil {
		return err
	}

	amount := stake.Amount
	stake.Active = false
	if err := s.stakes.Update(caller, stake); err != nil {
		return err
	}
	if err := s.subUserTotal(caller, amount); err != nil {
		return err
	}
	if err := s.totalStaked.Sub(amount); err != nil {
		return err
	}

	payout := new(big.Int).Add(amount, reward)
	if err := s.sctx.Transfer(caller, payout); err != nil {
		logger.Debug("unstake payout failed", "user", caller, "payout", payout, "err", err)
		return err
	}

	if err := s.sctx.Emit(events.Unstaked, []any{caller}, amount); err != nil {
		return err
	}
	if reward.Sign() > 0 {
		return s.sctx.Emit(events.RewardClaimed, []any{caller}, reward)
	}
	return nil
}

// CalculateReward returns the reward user would receive when unstaking at now.
func (s *Staking) CalculateReward(user gig.Address, now uint64) (*big.Int, error) {
	stake, err := s.GetStake(user)
	if err != nil {
		return nil, err
	}
	return s.reward(stake, now)
}

// Receive accepts value sent to the pool to fund rewards.
func (s *Staking) Receive(sender gig.Address, value *big.Int) error {
	logger.Trace("pool funded", "sender", sender, "value", value)
	return nil
}

// reward is amount * RewardRate * elapsedBeyondLock / (100 * SecondsPerYear), truncated.
func (s *Staking) reward(stake *Stake, now uint64) (*big.Int, error) {
	if !stake.Active || now < stake.Timestamp {
		return new(big.Int), nil
	}
	elapsed := now - stake.Timestamp
	if elapsed < gig.StakingDuration {
		return new(big.Int), nil
	}
	beyond := elapsed - gig.StakingDuration

	amount, overflow := uint256.FromBig(stake.Amount)
	if overflow {
		return nil, reverts.InvalidAmount
	}
	r, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(gig.RewardRate))
	if overflow {
		return nil, reverts.InvalidAmount
	}
	if _, overflow := r.MulOverflow(r, uint256.NewInt(beyond)); overflow {
		return nil, reverts.InvalidAmount
	}
	r.Div(r, uint256.NewInt(100*gig.SecondsPerYear))
	return r.ToBig(), nil
}

func (s *Staking) addUserTotal(user gig.Address, amount *big.Int) error {
	total, err := s.TotalStaked(user)
	if err != nil {
		return err
	}
	if total.Sign() == 0 {
		return s.userTotals.Insert(user, new(big.Int).Add(total, amount))
	}
	return s.userTotals.Update(user, new(big.Int).Add(total, amount))
}

func (s *Staking) subUserTotal(user gig.Address, amount *big.Int) error {
	total, err := s.TotalStaked(user)
	if err != nil {
		return err
	}
	return s.userTotals.Update(user, total.Sub(total, amount))
}
