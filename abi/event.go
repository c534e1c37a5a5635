// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gigstream/gigstream/gig"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 gig.Bytes32
	event              *ethabi.Event
	argsIndexed        ethabi.Arguments
	argsWithoutIndexed ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var indexed ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return &Event{
		gig.Bytes32(event.ID),
		event,
		indexed,
		event.Inputs.NonIndexed(),
	}
}

// ID returns event id.
func (e *Event) ID() gig.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(args...)
}

// Decode decodes event data.
func (e *Event) Decode(data []byte, v any) error {
	if len(e.argsWithoutIndexed) == 0 {
		return nil
	}
	vals, err := e.argsWithoutIndexed.Unpack(data)
	if err != nil {
		return err
	}
	return e.argsWithoutIndexed.Copy(v, vals)
}

// EncodeTopics builds the topics of the indexed args, the event id excluded.
func (e *Event) EncodeTopics(args ...any) ([]gig.Bytes32, error) {
	if len(args) != len(e.argsIndexed) {
		return nil, errors.New("indexed argument count mismatch")
	}
	query := make([][]any, 0, len(args))
	for _, arg := range args {
		if addr, ok := arg.(gig.Address); ok {
			arg = common.Address(addr)
		}
		query = append(query, []any{arg})
	}
	hashes, err := ethabi.MakeTopics(query...)
	if err != nil {
		return nil, err
	}
	topics := make([]gig.Bytes32, 0, len(hashes))
	for _, h := range hashes {
		topics = append(topics, gig.Bytes32(h[0]))
	}
	return topics, nil
}

// DecodeToMap decodes the topics (event id first) and data of a log into named values.
func (e *Event) DecodeToMap(topics []gig.Bytes32, data []byte) (map[string]any, error) {
	if len(topics) != len(e.argsIndexed)+1 || topics[0] != e.id {
		return nil, errors.New("topics mismatch")
	}
	out := make(map[string]any, len(e.event.Inputs))
	if len(e.argsWithoutIndexed) > 0 {
		if err := e.argsWithoutIndexed.UnpackIntoMap(out, data); err != nil {
			return nil, err
		}
	}
	hashes := make([]common.Hash, 0, len(topics)-1)
	for _, t := range topics[1:] {
		hashes = append(hashes, common.Hash(t))
	}
	if err := ethabi.ParseTopicsIntoMap(out, e.argsIndexed, hashes); err != nil {
		return nil, err
	}
	return out, nil
}
