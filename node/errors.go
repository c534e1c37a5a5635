// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import "github.com/pkg/errors"

var errKnownTx = errors.New("known transaction")

// badTxError is returned when a tx is malformed.
type badTxError struct {
	msg string
}

func (e badTxError) Error() string {
	return "bad tx: " + e.msg
}

// txRejectedError is returned when a tx is well formed but not accepted.
type txRejectedError struct {
	msg string
}

func (e txRejectedError) Error() string {
	return "tx rejected: " + e.msg
}

// IsBadTx returns whether the error is caused by a malformed tx.
func IsBadTx(err error) bool {
	_, ok := errors.Cause(err).(badTxError)
	return ok
}

// IsTxRejected returns whether the error is caused by a tx that can not be accepted.
func IsTxRejected(err error) bool {
	_, ok := errors.Cause(err).(txRejectedError)
	return ok
}

// IsKnownTx returns whether the tx is already pending or packed.
func IsKnownTx(err error) bool {
	return errors.Cause(err) == errKnownTx
}
