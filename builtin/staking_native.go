// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/staking"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/xenv"
)

// stakeTuple is the ABI shape of a stake.
type stakeTuple struct {
	Amount     *big.Int
	Timestamp  *big.Int
	UnlockTime *big.Int
	Active     bool
}

func init() {
	pool := func(env *xenv.Environment, charger *gascharger.Charger) *staking.Staking {
		return Staking.Native(env.State(), charger, env)
	}

	Staking.register("stake", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		check(pool(env, charger).Stake(env.Caller(), env.Value(), env.BlockContext().Time))
		return nil
	})
	Staking.register("unstake", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		check(pool(env, charger).Unstake(env.Caller(), env.BlockContext().Time))
		return nil
	})
	Staking.register("receive", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		check(pool(env, charger).Receive(env.Caller(), env.Value()))
		return nil
	})

	Staking.register("calculateReward", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		reward, err := pool(env, charger).CalculateReward(gig.Address(user), env.BlockContext().Time)
		check(err)
		return []any{reward}
	})
	Staking.register("getStake", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		stake, err := pool(env, charger).GetStake(gig.Address(user))
		check(err)
		return []any{stakeTuple{
			Amount:     stake.Amount,
			Timestamp:  new(big.Int).SetUint64(stake.Timestamp),
			UnlockTime: new(big.Int).SetUint64(stake.UnlockTime),
			Active:     stake.Active,
		}}
	})
	Staking.register("hasActiveStake", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		active, err := pool(env, charger).HasActiveStake(gig.Address(user))
		check(err)
		return []any{active}
	})
	Staking.register("totalStaked", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		total, err := pool(env, charger).TotalStaked(gig.Address(user))
		check(err)
		return []any{total}
	})
	Staking.register("getTotalStaked", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		total, err := pool(env, charger).GetTotalStaked()
		check(err)
		return []any{total}
	})
	Staking.register("gigEscrow", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		return []any{common.Address(pool(env, charger).GigEscrow())}
	})
	Staking.register("owner", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		owner, err := pool(env, charger).Owner()
		check(err)
		return []any{common.Address(owner)}
	})
	Staking.register("MIN_STAKE", func(*xenv.Environment, *gascharger.Charger) []any {
		return []any{new(big.Int).Set(gig.MinStake)}
	})
	Staking.register("STAKING_DURATION", func(*xenv.Environment, *gascharger.Charger) []any {
		return []any{new(big.Int).SetUint64(gig.StakingDuration)}
	})
	Staking.register("REWARD_RATE", func(*xenv.Environment, *gascharger.Charger) []any {
		return []any{new(big.Int).SetUint64(gig.RewardRate)}
	})
}
