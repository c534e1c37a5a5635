// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reputation implements the reputation ledger: an ERC-20 shaped balance token
// whose supply can only be minted by the escrow engine.
package reputation

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/builtin/solidity"
	"github.com/gigstream/gigstream/gig"
)

var (
	totalSupplySlot = gig.BytesToBytes32([]byte("total-supply"))
	balancesSlot    = gig.BytesToBytes32([]byte("balances"))
	allowancesSlot  = gig.BytesToBytes32([]byte("allowances"))
	ownerSlot       = gig.BytesToBytes32([]byte("owner"))
)

type allowanceKey struct {
	owner   gig.Address
	spender gig.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Reputation implements native methods of `ReputationToken` contract.
type Reputation struct {
	sctx        *solidity.Context
	minter      gig.Address
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[gig.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
	owner       *solidity.Address
}

// New creates the ledger. The minter is fixed for the lifetime of the instance.
func New(sctx *solidity.Context, minter gig.Address) (*Reputation, error) {
	if minter.IsZero() {
		return nil, reverts.InvalidAddress
	}
	return &Reputation{
		sctx:        sctx,
		minter:      minter,
		totalSupply: solidity.NewUint256(sctx, totalSupplySlot),
		balances:    solidity.NewMapping[gig.Address, *big.Int](sctx, balancesSlot),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](sctx, allowancesSlot),
		owner:       solidity.NewAddress(sctx, ownerSlot),
	}, nil
}

func (r *Reputation) Address() gig.Address { return r.sctx.Address() }
func (r *Reputation) Name() string         { return gig.ReputationName }
func (r *Reputation) Symbol() string       { return gig.ReputationSymbol }
func (r *Reputation) Decimals() uint8      { return gig.ReputationDecimals }
func (r *Reputation) Minter() gig.Address  { return r.minter }

// Owner returns the deployer recorded at genesis.
func (r *Reputation) Owner() (gig.Address, error) {
	return r.owner.Get()
}

// InitOwner records the deployer. It can be done once.
func (r *Reputation) InitOwner(owner gig.Address) error {
	current, err := r.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.Unauthorized
	}
	r.owner.Set(&owner, true)
	return nil
}

func (r *Reputation) TotalSupply() (*big.Int, error) {
	return r.totalSupply.Get()
}

func (r *Reputation) BalanceOf(addr gig.Address) (*big.Int, error) {
	bal, err := r.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	return orZero(bal), nil
}

// GetReputation is the reputation score of user, which is its balance.
func (r *Reputation) GetReputation(user gig.Address) (*big.Int, error) {
	return r.BalanceOf(user)
}

func (r *Reputation) Allowance(owner, spender gig.Address) (*big.Int, error) {
	v, err := r.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, err
	}
	return orZero(v), nil
}

// Mint creates amount for to. Only the minter may call it.
func (r *Reputation) Mint(caller, to gig.Address, amount *big.Int, reason string) error {
	if caller != r.minter {
		return reverts.OnlyGigEscrow
	}
	if to.IsZero() {
		return reverts.InvalidAddress
	}
	supply, err := r.totalSupply.Get()
	if err != nil {
		return err
	}
	newSupply, err := checkedAdd(supply, amount)
	if err != nil {
		return err
	}
	bal, err := r.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := r.setBalance(to, bal, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	r.totalSupply.Set(newSupply)

	if err := r.sctx.Emit(events.Transfer, []any{gig.Address{}, to}, amount); err != nil {
		return err
	}
	return r.sctx.Emit(events.ReputationMinted, []any{to}, amount, reason)
}

// Burn destroys amount of from. A caller other than from spends its allowance.
func (r *Reputation) Burn(caller, from gig.Address, amount *big.Int, reason string) error {
	var allowance *big.Int
	if caller != from {
		var err error
		if allowance, err = r.checkAllowance(from, caller, amount); err != nil {
			return err
		}
	}
	bal, err := r.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.InsufficientBalance
	}

	if allowance != nil {
		if err := r.allowances.Update(allowanceKey{from, caller}, allowance.Sub(allowance, amount)); err != nil {
			return err
		}
	}
	if err := r.setBalance(from, bal, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	if err := r.totalSupply.Sub(amount); err != nil {
		return err
	}

	if err := r.sctx.Emit(events.Transfer, []any{from, gig.Address{}}, amount); err != nil {
		return err
	}
	return r.sctx.Emit(events.ReputationBurned, []any{from}, amount, reason)
}

// Transfer moves amount from caller to to.
func (r *Reputation) Transfer(caller, to gig.Address, amount *big.Int) error {
	return r.transfer(caller, to, amount)
}

// TransferFrom moves amount from from to to, spending the allowance granted to caller.
func (r *Reputation) TransferFrom(caller, from, to gig.Address, amount *big.Int) error {
	allowance, err := r.checkAllowance(from, caller, amount)
	if err != nil {
		return err
	}
	if err := r.transfer(from, to, amount); err != nil {
		return err
	}
	return r.allowances.Update(allowanceKey{from, caller}, allowance.Sub(allowance, amount))
}

// Approve sets the allowance of spender over the caller's balance, replacing any previous one.
func (r *Reputation) Approve(caller, spender gig.Address, amount *big.Int) error {
	if spender.IsZero() {
		return reverts.InvalidAddress
	}
	if err := r.allowances.Update(allowanceKey{caller, spender}, amount); err != nil {
		return err
	}
	return r.sctx.Emit(events.Approval, []any{caller, spender}, amount)
}

func (r *Reputation) transfer(from, to gig.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.InvalidAddress
	}
	fromBal, err := r.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.InsufficientBalance
	}
	if err := r.setBalance(from, fromBal, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := r.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := r.setBalance(to, toBal, new(big.Int).Add(toBal, amount)); err != nil {
		return err
	}
	return r.sctx.Emit(events.Transfer, []any{from, to}, amount)
}

func (r *Reputation) checkAllowance(owner, spender gig.Address, amount *big.Int) (*big.Int, error) {
	allowance, err := r.Allowance(owner, spender)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		return nil, reverts.InsufficientAllowance
	}
	return allowance, nil
}

func (r *Reputation) setBalance(addr gig.Address, old, value *big.Int) error {
	if old.Sign() == 0 {
		return r.balances.Insert(addr, value)
	}
	return r.balances.Update(addr, value)
}

// checkedAdd adds within 256 bits.
func checkedAdd(a, b *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, reverts.InvalidAmount
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, reverts.InvalidAmount
	}
	if _, overflow := x.AddOverflow(x, y); overflow {
		return nil, reverts.InvalidAmount
	}
	return x.ToBig(), nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
