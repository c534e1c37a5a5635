// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/gigstream/gigstream/gig"
)

func RandomHash() gig.Bytes32 {
	var b32 gig.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() gig.Address {
	var addr gig.Address

	rand.Read(addr[:])
	return addr
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}
