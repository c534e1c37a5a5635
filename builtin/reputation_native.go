// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/reputation"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/xenv"
)

func init() {
	ledger := func(env *xenv.Environment, charger *gascharger.Charger) *reputation.Reputation {
		return Reputation.Native(env.State(), charger, env)
	}

	Reputation.register("name", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		return []any{ledger(env, charger).Name()}
	})
	Reputation.register("symbol", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		return []any{ledger(env, charger).Symbol()}
	})
	Reputation.register("decimals", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		return []any{ledger(env, charger).Decimals()}
	})
	Reputation.register("totalSupply", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		supply, err := ledger(env, charger).TotalSupply()
		check(err)
		return []any{supply}
	})
	Reputation.register("balanceOf", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var account common.Address
		env.ParseArgs(&account)
		bal, err := ledger(env, charger).BalanceOf(gig.Address(account))
		check(err)
		return []any{bal}
	})
	Reputation.register("getReputation", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		rep, err := ledger(env, charger).GetReputation(gig.Address(user))
		check(err)
		return []any{rep}
	})
	Reputation.register("allowance", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			Owner   common.Address
			Spender common.Address
		}
		env.ParseArgs(&args)
		v, err := ledger(env, charger).Allowance(gig.Address(args.Owner), gig.Address(args.Spender))
		check(err)
		return []any{v}
	})
	Reputation.register("gigEscrow", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		return []any{common.Address(ledger(env, charger).Minter())}
	})
	Reputation.register("owner", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		owner, err := ledger(env, charger).Owner()
		check(err)
		return []any{common.Address(owner)}
	})

	Reputation.register("transfer", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			To     common.Address
			Amount *big.Int
		}
		env.ParseArgs(&args)
		check(ledger(env, charger).Transfer(env.Caller(), gig.Address(args.To), args.Amount))
		return []any{true}
	})
	Reputation.register("approve", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			Spender common.Address
			Amount  *big.Int
		}
		env.ParseArgs(&args)
		check(ledger(env, charger).Approve(env.Caller(), gig.Address(args.Spender), args.Amount))
		return []any{true}
	})
	Reputation.register("transferFrom", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			From   common.Address
			To     common.Address
			Amount *big.Int
		}
		env.ParseArgs(&args)
		check(ledger(env, charger).TransferFrom(env.Caller(), gig.Address(args.From), gig.Address(args.To), args.Amount))
		return []any{true}
	})
	Reputation.register("mint", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			To     common.Address
			Amount *big.Int
			Reason string
		}
		env.ParseArgs(&args)
		check(ledger(env, charger).Mint(env.Caller(), gig.Address(args.To), args.Amount, args.Reason))
		return nil
	})
	Reputation.register("burn", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			From   common.Address
			Amount *big.Int
			Reason string
		}
		env.ParseArgs(&args)
		check(ledger(env, charger).Burn(env.Caller(), gig.Address(args.From), args.Amount, args.Reason))
		return nil
	})
}
