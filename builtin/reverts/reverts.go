// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// ErrRevert is a named ledger failure. It aborts the whole call and surfaces as the revert reason.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Bytes returns the reason encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *ErrRevert
	if errors.As(e, &re) {
		return re != nil
	}
	return false
}

// Authorization failures.
var (
	NotAuthorized = New("NotAuthorized")
	OnlyGigEscrow = New("OnlyGigEscrow")
	Unauthorized  = New("Unauthorized")
)

// State machine violations.
var (
	JobNotFound         = New("JobNotFound")
	JobAlreadyAssigned  = New("JobAlreadyAssigned")
	JobAlreadyCompleted = New("JobAlreadyCompleted")
	JobAlreadyCancelled = New("JobAlreadyCancelled")
	NoStake             = New("NoStake")
	StakeLocked         = New("StakeLocked")
)

// Input validation failures.
var (
	InsufficientPayment = New("InsufficientPayment")
	InvalidDeadline     = New("InvalidDeadline")
	InvalidAddress      = New("InvalidAddress")
	InvalidAmount       = New("InvalidAmount")
)

// Ledger arithmetic failures.
var (
	InsufficientBalance         = New("InsufficientBalance")
	InsufficientAllowance       = New("InsufficientAllowance")
	InsufficientContractBalance = New("InsufficientContractBalance")
)
