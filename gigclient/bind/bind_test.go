// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bind

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/api"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/gigclient"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/node"
	"github.com/gigstream/gigstream/test/testchain"
)

var reward = big.NewInt(1e18)

func newTestClient(t *testing.T) (*testchain.Chain, *gigclient.Client) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	n := node.New(tchain.Repo(), tchain.Stater(), tchain.LogDB(), health.New(0), nil, node.Options{OnDemand: true})
	handler, closeSubs := api.New(n, api.Options{
		CallGasLimit:   gig.BlockGasLimit,
		LogsLimit:      100,
		RequestTimeout: 5 * time.Second,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(closeSubs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return tchain, gigclient.New(ts.URL)
}

func TestContract(t *testing.T) {
	tchain, client := newTestClient(t)
	escrow := NewContract(client, builtin.Escrow.ABI, builtin.Escrow.Address)
	employer := NewSigner(tchain.Accounts()[1].PrivateKey)
	worker := NewSigner(tchain.Accounts()[2].PrivateKey)
	assert.Equal(t, tchain.Accounts()[1].Address, employer.Address())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	deadline := new(big.Int).SetUint64(uint64(time.Now().Unix()) + 3*24*3600)
	receipt, trx, err := escrow.Method("postJob", "Pintor", "Condesa", reward, deadline).
		WithValue(reward).
		Send(ctx, employer)
	require.NoError(t, err)
	assert.False(t, receipt.Reverted)
	assert.Equal(t, trx.ID(), receipt.Meta.TxID)
	assert.Equal(t, employer.Address(), receipt.Meta.TxOrigin)

	out, err := escrow.Method("jobCounter").CallUnpack(nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(1), out[0])

	_, _, err = escrow.Method("placeBid", big.NewInt(1), big.NewInt(5)).Send(ctx, worker)
	require.NoError(t, err)

	bids, err := client.JobBids(1)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, worker.Address(), bids[0].Worker)

	_, _, err = escrow.Method("acceptBid", big.NewInt(1), worker.Address()).Send(ctx, employer)
	require.NoError(t, err)
	_, _, err = escrow.Method("completeJob", big.NewInt(1)).Send(ctx, worker)
	require.NoError(t, err)

	var rep *big.Int
	require.NoError(t, escrow.Method("reputation", worker.Address()).Call(nil, &rep))
	assert.Positive(t, rep.Sign())

	job, err := client.Job(1)
	require.NoError(t, err)
	assert.Equal(t, "completed", job.Status)

	events, err := escrow.FilterEvent("JobPosted", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, trx.ID(), events[0].Meta.TxID)

	events, err = escrow.FilterEvent("JobCompleted", nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestContractErrors(t *testing.T) {
	tchain, client := newTestClient(t)
	escrow := NewContract(client, builtin.Escrow.ABI, builtin.Escrow.Address)
	signer := NewSigner(tchain.Accounts()[3].PrivateKey)

	_, err := escrow.Method("noSuchMethod").Clause()
	assert.ErrorContains(t, err, "method not found")

	_, err = escrow.Method("cancelJob").Clause()
	assert.ErrorContains(t, err, "failed to pack method")

	_, err = escrow.Method("cancelJob", big.NewInt(1)).IssueTx(signer)
	assert.ErrorContains(t, err, "reverted")

	best, err := client.BestBlock()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), best.Number, "reverting txs are not sent")

	_, err = escrow.FilterEvent("NoSuchEvent", nil)
	assert.ErrorContains(t, err, "event not found")

	_, err = escrow.FilterEvent("JobPosted", nil, nil, nil, nil, nil, nil)
	assert.ErrorContains(t, err, "too many topics")
}

func TestMethodString(t *testing.T) {
	escrow := NewContract(nil, builtin.Escrow.ABI, builtin.Escrow.Address)
	s := escrow.Method("placeBid", big.NewInt(1), big.NewInt(5)).WithValue(big.NewInt(7)).String()
	assert.Equal(t, "contract="+builtin.Escrow.Address.String()+", method=placeBid, value=7, args=[1, 5]", s)
}
