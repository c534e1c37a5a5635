// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/gig"
)

// Sign returns a copy of trx signed by pk. The origin recovered from the
// signature is checked against the key, so a signed tx always resolves.
func Sign(trx *Transaction, pk *ecdsa.PrivateKey) (*Transaction, error) {
	if pk == nil {
		return nil, errors.New("sign tx: nil private key")
	}
	hash := trx.SigningHash()
	sig, err := crypto.Sign(hash[:], pk)
	if err != nil {
		return nil, errors.Wrap(err, "sign tx")
	}

	signed := trx.WithSignature(sig)
	origin, err := signed.Origin()
	if err != nil {
		return nil, errors.Wrap(err, "sign tx")
	}
	if want := gig.Address(crypto.PubkeyToAddress(pk.PublicKey)); origin != want {
		return nil, errors.Errorf("sign tx: origin %v, want %v", origin, want)
	}
	return signed, nil
}

// MustSign is Sign for keys known to be valid, such as the dev accounts.
func MustSign(trx *Transaction, pk *ecdsa.PrivateKey) *Transaction {
	signed, err := Sign(trx, pk)
	if err != nil {
		panic(err)
	}
	return signed
}
