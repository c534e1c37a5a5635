// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gig

import (
	"math/big"

	ethparams "github.com/ethereum/go-ethereum/params"
)

// Constants of the sequencer.
const (
	BlockInterval   uint64 = 10 // default seconds between two consecutive blocks.
	BlockGasLimit   uint64 = 40 * 1000 * 1000
	MaxTxExpiration uint32 = 720

	TxGas            uint64 = ethparams.TxGas
	ClauseGas        uint64 = ethparams.TxGas * 2 / 3
	TxDataZeroGas    uint64 = ethparams.TxDataZeroGas
	TxDataNonZeroGas uint64 = ethparams.TxDataNonZeroGasFrontier

	SloadGas       uint64 = ethparams.SloadGasEIP150
	SstoreSetGas   uint64 = ethparams.SstoreSetGas
	SstoreResetGas uint64 = ethparams.SstoreResetGas
	GetBalanceGas  uint64 = ethparams.BalanceGasEIP150
	TransferGas    uint64 = 2300
)

// Escrow and staking rules.
const (
	MinDeadlineOffset uint64 = 24 * 3600      // jobs must leave at least one day to deliver.
	StakingDuration   uint64 = 30 * 24 * 3600 // lock period of a stake.
	RewardRate        uint64 = 5              // percent per year.
	SecondsPerYear    uint64 = 365 * 24 * 3600
)

// Reputation token metadata.
const (
	ReputationName     = "GigStream Reputation Token"
	ReputationSymbol   = "GST"
	ReputationDecimals = uint8(18)
)

// MinStake is the smallest accepted stake, 0.1 ether in wei.
var MinStake = big.NewInt(1e17)

// Addresses of the builtin ledgers.
var (
	EscrowAddress     = BytesToAddress([]byte("GigEscrow"))
	ReputationAddress = BytesToAddress([]byte("ReputationToken"))
	StakingAddress    = BytesToAddress([]byte("StakingPool"))
)
