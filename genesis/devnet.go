// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// DevAccount account for development.
type DevAccount struct {
	Address    gig.Address
	PrivateKey *ecdsa.PrivateKey
}

const devAccountCount = 10

// DevAccounts returns pre-alloced accounts for solo mode.
// The keys are derived from a fixed seed, so they are the same on every run.
var DevAccounts = sync.OnceValue(func() []DevAccount {
	accs := make([]DevAccount, 0, devAccountCount)
	for i := range devAccountCount {
		seed := gig.Blake2b([]byte("gigstream dev account"), binary.BigEndian.AppendUint32(nil, uint32(i)))
		// reduced modulo the curve order, so any seed makes a valid key
		pk, err := crypto.ToECDSA(secp256k1.PrivKeyFromBytes(seed[:]).Serialize())
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{gig.Address(crypto.PubkeyToAddress(pk.PublicKey)), pk})
	}
	return accs
})

var (
	devBalance     = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
	devPoolBalance = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))
)

// NewDevnet create genesis for solo mode.
// The first dev account is the admin of the ledgers.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 2025-01-01T00:00:00Z

	admin := DevAccounts()[0].Address

	builder := new(Builder).
		GasLimit(gig.BlockGasLimit).
		Timestamp(launchTime).
		State(func(st *state.State) error {
			for _, a := range DevAccounts() {
				if err := st.SetBalance(a.Address, devBalance); err != nil {
					return err
				}
			}
			if err := st.SetBalance(builtin.Staking.Address, devPoolBalance); err != nil {
				return err
			}
			return initLedgers(st, admin)
		})

	var extra [28]byte
	copy(extra[:], "gigstream devnet")
	builder.ExtraData(extra)

	gene, err := newGenesis(builder, "devnet")
	if err != nil {
		panic(err)
	}
	return gene
}

// initLedgers records the admin of the escrow and the owners of the ledgers.
func initLedgers(st *state.State, admin gig.Address) error {
	if err := builtin.Escrow.WithState(st).InitAdmin(admin); err != nil {
		return err
	}
	if err := builtin.Reputation.WithState(st).InitOwner(admin); err != nil {
		return err
	}
	return builtin.Staking.WithState(st).InitOwner(admin)
}
