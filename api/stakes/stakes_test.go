// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/test/testchain"
)

func TestStakes(t *testing.T) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tchain.Close()

	var now atomic.Uint64
	stakes := New(tchain.Repo(), tchain.Stater())
	stakes.clock = now.Load
	router := mux.NewRouter()
	stakes.Mount(router, "/stakes")
	ts := httptest.NewServer(router)
	defer ts.Close()

	staker := tchain.Accounts()[1].Address
	amount := big.NewInt(1e18)
	clause, err := testchain.Clause(builtin.Staking.Address, builtin.Staking.ABI, amount, "stake")
	require.NoError(t, err)
	_, err = tchain.MintClauses(tchain.Accounts()[1], clause)
	require.NoError(t, err)
	stakedAt := tchain.BestBlock().Header().Timestamp()

	now.Store(stakedAt + 60)
	res, code := httpGet(t, ts.URL+"/stakes/"+staker.String())
	require.Equal(t, http.StatusOK, code, string(res))
	var stake Stake
	require.NoError(t, json.Unmarshal(res, &stake))
	assert.Equal(t, staker, stake.Address)
	assert.Equal(t, amount, (*big.Int)(stake.Amount))
	assert.Equal(t, stakedAt, stake.Timestamp)
	assert.Equal(t, stakedAt+gig.StakingDuration, stake.UnlockTime)
	assert.True(t, stake.Active)
	assert.False(t, stake.Unlocked)
	assert.Equal(t, amount, (*big.Int)(stake.TotalStaked))
	assert.Zero(t, (*big.Int)(stake.PendingReward).Sign(), "no reward within the lock")

	now.Store(stakedAt + gig.StakingDuration + gig.SecondsPerYear)
	res, code = httpGet(t, ts.URL+"/stakes/"+staker.String())
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res, &stake))
	assert.True(t, stake.Unlocked)
	assert.Equal(t, big.NewInt(5e16), (*big.Int)(stake.PendingReward))

	res, code = httpGet(t, ts.URL+"/stakes/"+tchain.Accounts()[2].Address.String())
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res, &stake))
	assert.False(t, stake.Active)
	assert.Zero(t, (*big.Int)(stake.Amount).Sign())

	res, code = httpGet(t, ts.URL+"/stakes")
	require.Equal(t, http.StatusOK, code, string(res))
	var pool Pool
	require.NoError(t, json.Unmarshal(res, &pool))
	assert.Equal(t, builtin.Staking.Address, pool.Address)
	assert.Equal(t, tchain.Accounts()[0].Address, pool.Owner)
	assert.Equal(t, amount, (*big.Int)(pool.TotalStaked))
	assert.Equal(t, gig.MinStake, (*big.Int)(pool.MinStake))
	assert.Equal(t, gig.StakingDuration, pool.StakingDuration)
	assert.Equal(t, gig.RewardRate, pool.RewardRate)
	expected, err := tchain.Stater().NewState().GetBalance(builtin.Staking.Address)
	require.NoError(t, err)
	assert.Equal(t, expected, (*big.Int)(pool.Balance))

	_, code = httpGet(t, ts.URL+"/stakes/0xzz")
	assert.Equal(t, http.StatusBadRequest, code)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
