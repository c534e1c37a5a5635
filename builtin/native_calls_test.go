// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/test/datagen"
	"github.com/gigstream/gigstream/xenv"
)

func M(a ...any) []any {
	return a
}

var (
	t0     = uint64(1_700_000_000)
	reward = big.NewInt(1e17)
)

type ctest struct {
	t   *testing.T
	st  *state.State
	now uint64
}

func newCtest(t *testing.T) *ctest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &ctest{t: t, st: state.NewStater(db, 1).NewState(), now: t0}
}

type result struct {
	data []byte
	err  error
	env  *xenv.Environment
}

// call runs a native the way the runtime does: value moves first, everything reverts on error.
func (c *ctest) call(caller gig.Address, to *contract, value *big.Int, readonly bool, name string, args ...any) *result {
	var input []byte
	if name != "" {
		method, ok := to.ABI.MethodByName(name)
		require.True(c.t, ok, name)
		var err error
		input, err = method.EncodeInput(args...)
		require.NoError(c.t, err)
	}
	method, run, found := FindNativeCall(to.Address, input)
	require.True(c.t, found, name)

	cp := c.st.NewCheckpoint()
	if value != nil && value.Sign() > 0 {
		ok, err := c.st.Transfer(caller, to.Address, value)
		require.NoError(c.t, err)
		require.True(c.t, ok, "caller short of balance")
	}
	env := xenv.New(method, c.st, &xenv.BlockContext{Number: 1, Time: c.now}, &xenv.TransactionContext{}, caller, to.Address, value, input, math.MaxUint64)
	data, err := env.Call(run, readonly)()
	if err != nil {
		c.st.RevertTo(cp)
	}
	return &result{data, err, env}
}

func (c *ctest) query(to *contract, name string, args ...any) []any {
	r := c.call(gig.Address{}, to, nil, true, name, args...)
	require.NoError(c.t, r.err, name)
	method, _ := to.ABI.MethodByName(name)
	out, err := method.UnpackOutput(r.data)
	require.NoError(c.t, err)
	return out
}

func (c *ctest) fund(addr gig.Address, amount *big.Int) {
	require.NoError(c.t, c.st.AddBalance(addr, amount))
}

func TestFindNativeCall(t *testing.T) {
	for _, c := range Contracts {
		_, _, found := FindNativeCall(c.Address, []byte{1, 2})
		assert.False(t, found, "short input")
		_, _, found = FindNativeCall(c.Address, []byte{1, 2, 3, 4})
		assert.False(t, found, "unknown method")
		assert.True(t, IsBuiltin(c.Address))
	}
	_, _, found := FindNativeCall(Escrow.Address, nil)
	assert.False(t, found, "escrow has no receive")
	_, _, found = FindNativeCall(datagen.RandAddress(), nil)
	assert.False(t, found)
	assert.False(t, IsBuiltin(datagen.RandAddress()))
}

func TestEveryMethodImplemented(t *testing.T) {
	for _, c := range Contracts {
		for _, name := range methodNames(c.ABI) {
			m, _ := c.ABI.MethodByName(name)
			id := m.ID()
			_, _, found := FindNativeCall(c.Address, id[:])
			assert.True(t, found, "%s.%s", c.Name(), name)
		}
	}
}

func methodNames(a *abi.ABI) []string {
	names := []string{
		"postJob", "placeBid", "acceptBid", "assignWorkerDirectly", "completeJob", "cancelJob",
		"grantInitialReputation", "getJob", "getJobBids", "getUserJobs", "getWorkerJobs", "getBalance",
		"reputation", "jobCounter", "owner", "reputationToken", "MIN_DEADLINE_OFFSET",
		"name", "symbol", "decimals", "totalSupply", "balanceOf", "getReputation", "allowance",
		"gigEscrow", "transfer", "approve", "transferFrom", "mint", "burn",
		"stake", "unstake", "calculateReward", "getStake", "hasActiveStake", "totalStaked",
		"getTotalStaked", "MIN_STAKE", "STAKING_DURATION", "REWARD_RATE",
	}
	var out []string
	for _, n := range names {
		if _, ok := a.MethodByName(n); ok {
			out = append(out, n)
		}
	}
	return out
}

func TestEscrowNatives(t *testing.T) {
	c := newCtest(t)
	admin, employer, worker := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, Escrow.WithState(c.st).InitAdmin(admin))
	c.fund(employer, big.NewInt(1e18))
	deadline := new(big.Int).SetUint64(t0 + 7*24*3600)

	r := c.call(employer, Escrow.contract, reward, false, "postJob", "Plomero CDMX", "Polanco", reward, deadline)
	require.NoError(t, r.err)
	postJob, _ := Escrow.ABI.MethodByName("postJob")
	assert.Equal(t, M(M(big.NewInt(1)), nil), M(postJob.UnpackOutput(r.data)))
	assert.Len(t, r.env.Events(), 1)
	assert.Equal(t, Escrow.Address, r.env.Events()[0].Address)

	assert.Equal(t, M(big.NewInt(1)), c.query(Escrow.contract, "jobCounter"))
	assert.Equal(t, M(reward), c.query(Escrow.contract, "getBalance"))
	assert.Equal(t, M(common.Address(admin)), c.query(Escrow.contract, "owner"))
	assert.Equal(t, M(common.Address(Reputation.Address)), c.query(Escrow.contract, "reputationToken"))
	assert.Equal(t, M(big.NewInt(86400)), c.query(Escrow.contract, "MIN_DEADLINE_OFFSET"))
	assert.Equal(t, M([]*big.Int{big.NewInt(1)}), c.query(Escrow.contract, "getUserJobs", common.Address(employer)))

	r = c.call(worker, Escrow.contract, nil, false, "placeBid", big.NewInt(999), big.NewInt(0))
	assert.Equal(t, reverts.JobNotFound, r.err)
	r = c.call(worker, Escrow.contract, nil, false, "placeBid", new(big.Int).Lsh(big.NewInt(1), 70), big.NewInt(0))
	assert.Equal(t, reverts.JobNotFound, r.err, "id beyond uint64")

	require.NoError(t, c.call(worker, Escrow.contract, nil, false, "placeBid", big.NewInt(1), big.NewInt(3)).err)
	assert.Equal(t, reverts.NotAuthorized, c.call(worker, Escrow.contract, nil, false, "acceptBid", big.NewInt(1), common.Address(worker)).err)
	require.NoError(t, c.call(employer, Escrow.contract, nil, false, "acceptBid", big.NewInt(1), common.Address(worker)).err)
	assert.Equal(t, M([]*big.Int{big.NewInt(1)}), c.query(Escrow.contract, "getWorkerJobs", common.Address(worker)))

	getJob, _ := Escrow.ABI.MethodByName("getJob")
	r = c.call(gig.Address{}, Escrow.contract, nil, true, "getJob", big.NewInt(1))
	require.NoError(t, r.err)
	var job struct{ Job jobTuple }
	require.NoError(t, getJob.DecodeOutput(r.data, &job))
	assert.Equal(t, jobTuple{
		Id:        big.NewInt(1),
		Employer:  common.Address(employer),
		Title:     "Plomero CDMX",
		Location:  "Polanco",
		Reward:    reward,
		Deadline:  deadline,
		Worker:    common.Address(worker),
		CreatedAt: new(big.Int).SetUint64(t0),
	}, job.Job)

	getJobBids, _ := Escrow.ABI.MethodByName("getJobBids")
	r = c.call(gig.Address{}, Escrow.contract, nil, true, "getJobBids", big.NewInt(1))
	require.NoError(t, r.err)
	var bids struct{ Bids []bidTuple }
	require.NoError(t, getJobBids.DecodeOutput(r.data, &bids))
	assert.Equal(t, []bidTuple{{Worker: common.Address(worker), Amount: big.NewInt(3), Timestamp: new(big.Int).SetUint64(t0), Accepted: true}}, bids.Bids)

	r = c.call(worker, Escrow.contract, nil, false, "completeJob", big.NewInt(1))
	require.NoError(t, r.err)
	assert.Len(t, r.env.Events(), 4)
	assert.Equal(t, Reputation.Address, r.env.Events()[0].Address)
	assert.Len(t, r.env.Transfers(), 1)
	assert.Equal(t, M(reward, nil), M(c.st.GetBalance(worker)))
	assert.Equal(t, M(big.NewInt(1)), c.query(Escrow.contract, "reputation", common.Address(worker)))
	assert.Equal(t, M(big.NewInt(1)), c.query(Reputation.contract, "balanceOf", common.Address(worker)))

	assert.Equal(t, reverts.Unauthorized, c.call(employer, Escrow.contract, nil, false, "grantInitialReputation", common.Address(worker), big.NewInt(5)).err)
	require.NoError(t, c.call(admin, Escrow.contract, nil, false, "grantInitialReputation", common.Address(worker), big.NewInt(5)).err)
	assert.Equal(t, M(big.NewInt(6)), c.query(Reputation.contract, "getReputation", common.Address(worker)))
}

func TestNotPayableAndReadonly(t *testing.T) {
	c := newCtest(t)
	user := datagen.RandAddress()
	c.fund(user, big.NewInt(1e18))

	r := c.call(user, Escrow.contract, big.NewInt(1), false, "placeBid", big.NewInt(1), big.NewInt(0))
	assert.Equal(t, xenv.ErrNotPayable, r.err)
	assert.Equal(t, M(big.NewInt(1e18), nil), M(c.st.GetBalance(user)), "value returned on failure")

	r = c.call(user, Escrow.contract, nil, true, "cancelJob", big.NewInt(1))
	assert.Equal(t, xenv.ErrWriteProtection, r.err)
}

func TestOutOfGas(t *testing.T) {
	c := newCtest(t)
	user := datagen.RandAddress()
	method, run, found := FindNativeCall(Staking.Address, mustInput(t, Staking.contract, "getTotalStaked"))
	require.True(t, found)

	env := xenv.New(method, c.st, &xenv.BlockContext{}, &xenv.TransactionContext{}, user, Staking.Address, nil, mustInput(t, Staking.contract, "getTotalStaked"), 10)
	_, err := env.Call(run, true)()
	assert.Equal(t, xenv.ErrOutOfGas, err)
}

func mustInput(t *testing.T, c *contract, name string, args ...any) []byte {
	m, ok := c.ABI.MethodByName(name)
	require.True(t, ok)
	input, err := m.EncodeInput(args...)
	require.NoError(t, err)
	return input
}

func TestReputationNatives(t *testing.T) {
	c := newCtest(t)
	a, b := datagen.RandAddress(), datagen.RandAddress()

	assert.Equal(t, M("GigStream Reputation Token"), c.query(Reputation.contract, "name"))
	assert.Equal(t, M("GST"), c.query(Reputation.contract, "symbol"))
	assert.Equal(t, M(uint8(18)), c.query(Reputation.contract, "decimals"))
	assert.Equal(t, M(common.Address(Escrow.Address)), c.query(Reputation.contract, "gigEscrow"))

	r := c.call(a, Reputation.contract, nil, false, "mint", common.Address(a), big.NewInt(1), "self")
	assert.Equal(t, reverts.OnlyGigEscrow, r.err)
	assert.Equal(t, "OnlyGigEscrow", r.err.Error())

	require.NoError(t, Reputation.Native(c.st, nil, nil).Mint(Escrow.Address, a, big.NewInt(10), "seed"))
	r = c.call(a, Reputation.contract, nil, false, "transfer", common.Address(b), big.NewInt(4))
	require.NoError(t, r.err)
	transfer, _ := Reputation.ABI.MethodByName("transfer")
	assert.Equal(t, M(M(true), nil), M(transfer.UnpackOutput(r.data)))

	require.NoError(t, c.call(a, Reputation.contract, nil, false, "approve", common.Address(b), big.NewInt(2)).err)
	assert.Equal(t, M(big.NewInt(2)), c.query(Reputation.contract, "allowance", common.Address(a), common.Address(b)))
	require.NoError(t, c.call(b, Reputation.contract, nil, false, "transferFrom", common.Address(a), common.Address(b), big.NewInt(2)).err)
	require.NoError(t, c.call(b, Reputation.contract, nil, false, "burn", common.Address(b), big.NewInt(6), "penalty").err)
	assert.Equal(t, M(big.NewInt(4)), c.query(Reputation.contract, "totalSupply"))
}

func TestStakingNatives(t *testing.T) {
	c := newCtest(t)
	user := datagen.RandAddress()
	c.fund(user, big.NewInt(2e18))
	stake := big.NewInt(1e18)

	assert.Equal(t, reverts.InvalidAmount, c.call(user, Staking.contract, big.NewInt(5e16), false, "stake").err)
	assert.Equal(t, M(big.NewInt(2e18), nil), M(c.st.GetBalance(user)))

	require.NoError(t, c.call(user, Staking.contract, stake, false, "stake").err)
	assert.Equal(t, M(true), c.query(Staking.contract, "hasActiveStake", common.Address(user)))
	assert.Equal(t, M(stake), c.query(Staking.contract, "totalStaked", common.Address(user)))
	assert.Equal(t, M(stake), c.query(Staking.contract, "getTotalStaked"))
	assert.Equal(t, M(big.NewInt(1e17)), c.query(Staking.contract, "MIN_STAKE"))
	assert.Equal(t, M(big.NewInt(5)), c.query(Staking.contract, "REWARD_RATE"))
	assert.Equal(t, M(new(big.Int).SetUint64(gig.StakingDuration)), c.query(Staking.contract, "STAKING_DURATION"))

	getStake, _ := Staking.ABI.MethodByName("getStake")
	r := c.call(gig.Address{}, Staking.contract, nil, true, "getStake", common.Address(user))
	require.NoError(t, r.err)
	var out struct{ Stake stakeTuple }
	require.NoError(t, getStake.DecodeOutput(r.data, &out))
	assert.Equal(t, stakeTuple{
		Amount:     stake,
		Timestamp:  new(big.Int).SetUint64(t0),
		UnlockTime: new(big.Int).SetUint64(t0 + gig.StakingDuration),
		Active:     true,
	}, out.Stake)

	assert.Equal(t, reverts.StakeLocked, c.call(user, Staking.contract, nil, false, "unstake").err)

	// fund the pool through its receive function
	funder := datagen.RandAddress()
	c.fund(funder, big.NewInt(1e18))
	require.NoError(t, c.call(funder, Staking.contract, big.NewInt(1e18), false, "").err)

	c.now = t0 + gig.StakingDuration + gig.SecondsPerYear
	assert.Equal(t, M(big.NewInt(5e16)), c.query(Staking.contract, "calculateReward", common.Address(user)))
	r = c.call(user, Staking.contract, nil, false, "unstake")
	require.NoError(t, r.err)
	assert.Len(t, r.env.Events(), 2)
	assert.Equal(t, M(big.NewInt(2e18+5e16), nil), M(c.st.GetBalance(user)))
	assert.Equal(t, M(false), c.query(Staking.contract, "hasActiveStake", common.Address(user)))
}
