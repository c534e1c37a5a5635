// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

//go:embed schema.json
var schemaJSON []byte

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime  uint64           `json:"launchTime"`
	GasLimit    uint64           `json:"gasLimit"`
	ExtraData   string           `json:"extraData"`
	Admin       gig.Address      `json:"admin"`
	Accounts    []Account        `json:"accounts"`
	StakingPool *HexOrDecimal256 `json:"stakingPool"`
	Reputation  []Grant          `json:"reputation"`
}

// Account is the account will set to the genesis block
type Account struct {
	Address gig.Address      `json:"address"`
	Balance *HexOrDecimal256 `json:"balance"`
}

// Grant is an initial reputation grant, made by the admin through the escrow.
type Grant struct {
	Address gig.Address      `json:"address"`
	Amount  *HexOrDecimal256 `json:"amount"`
}

// HexOrDecimal256 is a 256 bits integer given in hex or decimal, as a string or a number.
type HexOrDecimal256 math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		return (*big.Int)(i).UnmarshalJSON(input)
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	v := math.HexOrDecimal256(i)
	text, err := v.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (i *HexOrDecimal256) bigInt() *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(i))
}

// ParseCustomGenesis validates data against the genesis schema, then decodes it.
func ParseCustomGenesis(ctx context.Context, data []byte) (*CustomGenesis, error) {
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, schema); err != nil {
		return nil, errors.Wrap(err, "load genesis schema")
	}
	keyErrs, err := schema.ValidateBytes(ctx, data)
	if err != nil {
		return nil, errors.Wrap(err, "validate genesis")
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		return nil, errors.Errorf("invalid genesis: %s", strings.Join(msgs, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var gen CustomGenesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Admin.IsZero() {
		return nil, errors.New("admin must be set")
	}
	if len(gen.ExtraData) > 28 {
		return nil, errors.New("extraData exceeds 28 bytes")
	}
	gasLimit := gen.GasLimit
	if gasLimit == 0 {
		gasLimit = gig.BlockGasLimit
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		GasLimit(gasLimit).
		State(func(st *state.State) error {
			for _, a := range gen.Accounts {
				if a.Balance == nil {
					return fmt.Errorf("%s: balance must be set", a.Address)
				}
				if err := st.SetBalance(a.Address, a.Balance.bigInt()); err != nil {
					return err
				}
			}
			if err := st.AddBalance(builtin.Staking.Address, gen.StakingPool.bigInt()); err != nil {
				return err
			}
			return initLedgers(st, gen.Admin)
		})

	method, _ := builtin.Escrow.ABI.MethodByName("grantInitialReputation")
	for _, g := range gen.Reputation {
		data, err := method.EncodeInput(common.Address(g.Address), g.Amount.bigInt())
		if err != nil {
			return nil, err
		}
		builder.Call(tx.NewClause(&builtin.Escrow.Address).WithData(data), gen.Admin)
	}

	if len(gen.ExtraData) > 0 {
		var extra [28]byte
		copy(extra[:], gen.ExtraData)
		builder.ExtraData(extra)
	}

	return newGenesis(builder, "customnet")
}
