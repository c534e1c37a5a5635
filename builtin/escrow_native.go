// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gigstream/gigstream/builtin/escrow"
	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/xenv"
)

// jobTuple is the ABI shape of a job.
type jobTuple struct {
	Id        *big.Int
	Employer  common.Address
	Title     string
	Location  string
	Reward    *big.Int
	Deadline  *big.Int
	Worker    common.Address
	Completed bool
	Cancelled bool
	CreatedAt *big.Int
}

// bidTuple is the ABI shape of a bid.
type bidTuple struct {
	Worker    common.Address
	Amount    *big.Int
	Timestamp *big.Int
	Accepted  bool
}

// jobID narrows an ABI job id. Ids beyond uint64 were never allocated.
func jobID(id *big.Int) uint64 {
	if !id.IsUint64() {
		panic(reverts.JobNotFound)
	}
	return id.Uint64()
}

func idsToBig(ids []uint64) []*big.Int {
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		out = append(out, new(big.Int).SetUint64(id))
	}
	return out
}

func init() {
	engine := func(env *xenv.Environment, charger *gascharger.Charger) *escrow.Escrow {
		return Escrow.Native(env.State(), charger, env)
	}

	Escrow.register("postJob", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			Title    string
			Location string
			Reward   *big.Int
			Deadline *big.Int
		}
		env.ParseArgs(&args)
		id, err := engine(env, charger).PostJob(env.Caller(), env.Value(), env.BlockContext().Time, args.Title, args.Location, args.Reward, args.Deadline)
		check(err)
		return []any{new(big.Int).SetUint64(id)}
	})
	Escrow.register("placeBid", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			JobId *big.Int
			Bid   *big.Int
		}
		env.ParseArgs(&args)
		check(engine(env, charger).PlaceBid(env.Caller(), env.BlockContext().Time, jobID(args.JobId), args.Bid))
		return nil
	})
	Escrow.register("acceptBid", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			JobId  *big.Int
			Worker common.Address
		}
		env.ParseArgs(&args)
		check(engine(env, charger).AcceptBid(env.Caller(), jobID(args.JobId), gig.Address(args.Worker)))
		return nil
	})
	Escrow.register("assignWorkerDirectly", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			JobId  *big.Int
			Worker common.Address
		}
		env.ParseArgs(&args)
		check(engine(env, charger).AssignWorkerDirectly(env.Caller(), jobID(args.JobId), gig.Address(args.Worker)))
		return nil
	})
	Escrow.register("completeJob", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var id *big.Int
		env.ParseArgs(&id)
		check(engine(env, charger).CompleteJob(env.Caller(), jobID(id)))
		return nil
	})
	Escrow.register("cancelJob", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var id *big.Int
		env.ParseArgs(&id)
		check(engine(env, charger).CancelJob(env.Caller(), jobID(id)))
		return nil
	})
	Escrow.register("grantInitialReputation", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var args struct {
			User   common.Address
			Amount *big.Int
		}
		env.ParseArgs(&args)
		check(engine(env, charger).GrantInitialReputation(env.Caller(), gig.Address(args.User), args.Amount))
		return nil
	})

	Escrow.register("getJob", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var id *big.Int
		env.ParseArgs(&id)
		job, err := engine(env, charger).GetJob(jobID(id))
		check(err)
		return []any{jobTuple{
			Id:        new(big.Int).SetUint64(job.ID),
			Employer:  common.Address(job.Employer),
			Title:     job.Title,
			Location:  job.Location,
			Reward:    job.Reward,
			Deadline:  job.Deadline,
			Worker:    common.Address(job.Worker),
			Completed: job.Completed,
			Cancelled: job.Cancelled,
			CreatedAt: new(big.Int).SetUint64(job.CreatedAt),
		}}
	})
	Escrow.register("getJobBids", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var id *big.Int
		env.ParseArgs(&id)
		bids, err := engine(env, charger).GetJobBids(jobID(id))
		check(err)
		out := make([]bidTuple, 0, len(bids))
		for _, bid := range bids {
			out = append(out, bidTuple{
				Worker:    common.Address(bid.Worker),
				Amount:    bid.Amount,
				Timestamp: new(big.Int).SetUint64(bid.Timestamp),
				Accepted:  bid.Accepted,
			})
		}
		return []any{out}
	})
	Escrow.register("getUserJobs", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		ids, err := engine(env, charger).GetUserJobs(gig.Address(user))
		check(err)
		return []any{idsToBig(ids)}
	})
	Escrow.register("getWorkerJobs", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var worker common.Address
		env.ParseArgs(&worker)
		ids, err := engine(env, charger).GetWorkerJobs(gig.Address(worker))
		check(err)
		return []any{idsToBig(ids)}
	})
	Escrow.register("getBalance", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		bal, err := engine(env, charger).GetBalance()
		check(err)
		return []any{bal}
	})
	Escrow.register("reputation", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		var user common.Address
		env.ParseArgs(&user)
		rep, err := engine(env, charger).Reputation(gig.Address(user))
		check(err)
		return []any{rep}
	})
	Escrow.register("jobCounter", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		n, err := engine(env, charger).JobCounter()
		check(err)
		return []any{new(big.Int).SetUint64(n)}
	})
	Escrow.register("owner", func(env *xenv.Environment, charger *gascharger.Charger) []any {
		admin, err := engine(env, charger).Admin()
		check(err)
		return []any{common.Address(admin)}
	})
	Escrow.register("reputationToken", func(*xenv.Environment, *gascharger.Charger) []any {
		return []any{common.Address(Reputation.Address)}
	})
	Escrow.register("MIN_DEADLINE_OFFSET", func(*xenv.Environment, *gascharger.Charger) []any {
		return []any{new(big.Int).SetUint64(gig.MinDeadlineOffset)}
	})
}
