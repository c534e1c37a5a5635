// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package escrow implements the job escrow engine. Employers lock the reward when posting,
// workers bid, employers assign, and completion releases the reward and mints reputation.
package escrow

import (
	"math/big"

	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/builtin/solidity"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
)

var logger = log.WithContext("pkg", "escrow")

const (
	completionReason = "Job completed"
	grantReason      = "Initial reputation grant"
)

var (
	jobCounterSlot = gig.BytesToBytes32([]byte("job-counter"))
	jobsSlot       = gig.BytesToBytes32([]byte("jobs"))
	bidsSlot       = gig.BytesToBytes32([]byte("bids"))
	userJobsSlot   = gig.BytesToBytes32([]byte("user-jobs"))
	workerJobsSlot = gig.BytesToBytes32([]byte("worker-jobs"))
	adminSlot      = gig.BytesToBytes32([]byte("admin"))
)

// ReputationLedger is the part of the reputation token the escrow relies on.
type ReputationLedger interface {
	Address() gig.Address
	Mint(caller, to gig.Address, amount *big.Int, reason string) error
	BalanceOf(addr gig.Address) (*big.Int, error)
}

// Escrow implements native methods of `GigEscrow` contract.
type Escrow struct {
	sctx       *solidity.Context
	reputation ReputationLedger
	jobCounter *solidity.Uint256
	jobs       *solidity.Mapping[jobKey, *Job]
	admin      *solidity.Address
}

// New creates the engine. The reputation ledger must accept the engine address as its minter.
func New(sctx *solidity.Context, reputation ReputationLedger) *Escrow {
	return &Escrow{
		sctx:       sctx,
		reputation: reputation,
		jobCounter: solidity.NewUint256(sctx, jobCounterSlot),
		jobs:       solidity.NewMapping[jobKey, *Job](sctx, jobsSlot),
		admin:      solidity.NewAddress(sctx, adminSlot),
	}
}

func (e *Escrow) Address() gig.Address         { return e.sctx.Address() }
func (e *Escrow) ReputationToken() gig.Address { return e.reputation.Address() }

func (e *Escrow) bids(id uint64) *solidity.Array[*Bid] {
	return solidity.NewArray[*Bid](e.sctx, gig.Blake2b(bidsSlot.Bytes(), jobKey(id).Bytes()))
}

func (e *Escrow) userJobs(employer gig.Address) *solidity.Array[uint64] {
	return solidity.NewArray[uint64](e.sctx, gig.Blake2b(userJobsSlot.Bytes(), employer.Bytes()))
}

func (e *Escrow) workerJobs(worker gig.Address) *solidity.Array[uint64] {
	return solidity.NewArray[uint64](e.sctx, gig.Blake2b(workerJobsSlot.Bytes(), worker.Bytes()))
}

// Admin returns the address allowed to grant initial reputation.
func (e *Escrow) Admin() (gig.Address, error) {
	return e.admin.Get()
}

// InitAdmin records the admin. It can be done once, at genesis.
func (e *Escrow) InitAdmin(admin gig.Address) error {
	if admin.IsZero() {
		return reverts.InvalidAddress
	}
	current, err := e.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.Unauthorized
	}
	e.admin.Set(&admin, true)
	return nil
}

// JobCounter returns the id of the latest job, 0 if none.
func (e *Escrow) JobCounter() (uint64, error) {
	n, err := e.jobCounter.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GetJob returns the job of id, or JobNotFound.
func (e *Escrow) GetJob(id uint64) (*Job, error) {
	counter, err := e.JobCounter()
	if err != nil {
		return nil, err
	}
	if id == 0 || id > counter {
		return nil, reverts.JobNotFound
	}
	job, err := e.jobs.Get(jobKey(id))
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, reverts.JobNotFound
	}
	return job, nil
}

// GetJobBids returns the bids of a job in submission order.
func (e *Escrow) GetJobBids(id uint64) ([]*Bid, error) {
	if _, err := e.GetJob(id); err != nil {
		return nil, err
	}
	return e.bids(id).All()
}

// GetUserJobs returns the ids of jobs posted by employer.
func (e *Escrow) GetUserJobs(employer gig.Address) ([]uint64, error) {
	return e.userJobs(employer).All()
}

// GetWorkerJobs returns the ids of jobs assigned to worker.
func (e *Escrow) GetWorkerJobs(worker gig.Address) ([]uint64, error) {
	return e.workerJobs(worker).All()
}

// GetBalance returns the native balance held in escrow.
func (e *Escrow) GetBalance() (*big.Int, error) {
	return e.sctx.Balance()
}

// Reputation returns the reputation of user from the reputation ledger.
func (e *Escrow) Reputation(user gig.Address) (*big.Int, error) {
	return e.reputation.BalanceOf(user)
}

// PostJob creates a job funded by value. Any payment above reward stays in escrow.
func (e *Escrow) PostJob(caller gig.Address, value *big.Int, now uint64, title, location string, reward, deadline *big.Int) (uint64, error) {
	if value.Cmp(reward) < 0 {
		return 0, reverts.InsufficientPayment
	}
	minDeadline := new(big.Int).SetUint64(now)
	minDeadline.Add(minDeadline, new(big.Int).SetUint64(gig.MinDeadlineOffset))
	if deadline.Cmp(minDeadline) < 0 {
		return 0, reverts.InvalidDeadline
	}

	counter, err := e.JobCounter()
	if err != nil {
		return 0, err
	}
	id := counter + 1
	job := &Job{
		ID:        id,
		Employer:  caller,
		Title:     title,
		Location:  location,
		Reward:    new(big.Int).Set(reward),
		Deadline:  new(big.Int).Set(deadline),
		CreatedAt: now,
	}
	e.jobCounter.Set(new(big.Int).SetUint64(id))
	if err := e.jobs.Insert(jobKey(id), job); err != nil {
		return 0, err
	}
	if _, err := e.userJobs(caller).Push(id); err != nil {
		return 0, err
	}

	logger.Debug("job posted", "id", id, "employer", caller, "reward", reward)
	return id, e.sctx.Emit(events.JobPosted, []any{new(big.Int).SetUint64(id), caller}, title, job.Reward, job.Deadline)
}

// PlaceBid appends a bid of caller. Repeated bids are allowed.
func (e *Escrow) PlaceBid(caller gig.Address, now uint64, id uint64, amount *big.Int) error {
	job, err := e.GetJob(id)
	if err != nil {
		return err
	}
	if !job.Worker.IsZero() {
		return reverts.JobAlreadyAssigned
	}
	if job.Cancelled {
		return reverts.JobAlreadyCancelled
	}

	if _, err := e.bids(id).Push(&Bid{Worker: caller, Amount: new(big.Int).Set(amount), Timestamp: now}); err != nil {
		return err
	}
	return e.sctx.Emit(events.BidPlaced, []any{new(big.Int).SetUint64(id), caller}, amount, new(big.Int).SetUint64(now))
}

// AcceptBid assigns worker and marks its first bid accepted, if any.
func (e *Escrow) AcceptBid(caller gig.Address, id uint64, worker gig.Address) error {
	job, err := e.assignable(caller, id, worker)
	if err != nil {
		return err
	}

	bids := e.bids(id)
	n, err := bids.Len()
	if err != nil {
		return err
	}
	for i := range n {
		bid, err := bids.Get(i)
		if err != nil {
			return err
		}
		if bid.Worker == worker {
			bid.Accepted = true
			if err := bids.Set(i, bid); err != nil {
				return err
			}
			break
		}
	}
	return e.assign(job, worker)
}

// AssignWorkerDirectly assigns worker without looking at the bids.
func (e *Escrow) AssignWorkerDirectly(caller gig.Address, id uint64, worker gig.Address) error {
	job, err := e.assignable(caller, id, worker)
	if err != nil {
		return err
	}
	return e.assign(job, worker)
}

func (e *Escrow) assignable(caller gig.Address, id uint64, worker gig.Address) (*Job, error) {
	job, err := e.GetJob(id)
	if err != nil {
		return nil, err
	}
	if caller != job.Employer {
		return nil, reverts.NotAuthorized
	}
	if !job.Worker.IsZero() {
		return nil, reverts.JobAlreadyAssigned
	}
	if job.Cancelled {
		return nil, reverts.JobAlreadyCancelled
	}
	if worker.IsZero() {
		return nil, reverts.InvalidAddress
	}
	return job, nil
}

func (e *Escrow) assign(job *Job, worker gig.Address) error {
	job.Worker = worker
	if err := e.jobs.Update(jobKey(job.ID), job); err != nil {
		return err
	}
	if _, err := e.workerJobs(worker).Push(job.ID); err != nil {
		return err
	}
	return e.sctx.Emit(events.JobAccepted, []any{new(big.Int).SetUint64(job.ID), worker, job.Employer})
}

// CompleteJob releases the reward to the assigned worker and mints one reputation point.
func (e *Escrow) CompleteJob(caller gig.Address, id uint64) error {
	job, err := e.GetJob(id)
	if err != nil {
		return err
	}
	if job.Worker.IsZero() || caller != job.Worker {
		return reverts.NotAuthorized
	}
	if job.Completed {
		return reverts.JobAlreadyCompleted
	}
	if job.Cancelled {
		return reverts.JobAlreadyCancelled
	}

	job.Completed = true
	if err := e.jobs.Update(jobKey(id), job); err != nil {
		return err
	}
	if err := e.sctx.Transfer(job.Worker, job.Reward); err != nil {
		return err
	}
	newRep, err := e.mint(job.Worker, big.NewInt(1), completionReason)
	if err != nil {
		return err
	}

	logger.Debug("job completed", "id", id, "worker", job.Worker, "reward", job.Reward)
	if err := e.sctx.Emit(events.JobCompleted, []any{new(big.Int).SetUint64(id), job.Worker}, job.Reward); err != nil {
		return err
	}
	return e.sctx.Emit(events.ReputationUpdated, []any{job.Worker}, newRep)
}

// CancelJob refunds the reward to the employer. An assigned worker gets nothing.
func (e *Escrow) CancelJob(caller gig.Address, id uint64) error {
	job, err := e.GetJob(id)
	if err != nil {
		return err
	}
	if caller != job.Employer {
		return reverts.NotAuthorized
	}
	if job.Completed {
		return reverts.JobAlreadyCompleted
	}
	if job.Cancelled {
		return reverts.JobAlreadyCancelled
	}

	job.Cancelled = true
	if err := e.jobs.Update(jobKey(id), job); err != nil {
		return err
	}
	if err := e.sctx.Transfer(job.Employer, job.Reward); err != nil {
		return err
	}
	return e.sctx.Emit(events.JobCancelled, []any{new(big.Int).SetUint64(id), job.Employer}, job.Reward)
}

// GrantInitialReputation mints amount for user. Grants add up.
func (e *Escrow) GrantInitialReputation(caller, user gig.Address, amount *big.Int) error {
	admin, err := e.admin.Get()
	if err != nil {
		return err
	}
	if admin.IsZero() || caller != admin {
		return reverts.Unauthorized
	}
	if user.IsZero() {
		return reverts.InvalidAddress
	}
	newRep, err := e.mint(user, amount, grantReason)
	if err != nil {
		return err
	}
	return e.sctx.Emit(events.ReputationUpdated, []any{user}, newRep)
}

// mint credits reputation on behalf of the engine and returns the new balance.
func (e *Escrow) mint(to gig.Address, amount *big.Int, reason string) (*big.Int, error) {
	if err := e.reputation.Mint(e.Address(), to, amount, reason); err != nil {
		return nil, err
	}
	return e.reputation.BalanceOf(to)
}
