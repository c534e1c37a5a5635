// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package jobs serves the escrow jobs and their bids.
package jobs

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/builtin/escrow"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

type Jobs struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Jobs {
	return &Jobs{
		stater,
	}
}

func (j *Jobs) engine() *escrow.Escrow {
	return builtin.Escrow.WithState(j.stater.NewState())
}

func parseJobID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (j *Jobs) handleGetJob(w http.ResponseWriter, req *http.Request) error {
	id, err := parseJobID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	job, err := j.engine().GetJob(id)
	if err != nil {
		if err == reverts.JobNotFound {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertJob(job))
}

func (j *Jobs) handleGetJobBids(w http.ResponseWriter, req *http.Request) error {
	id, err := parseJobID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	bids, err := j.engine().GetJobBids(id)
	if err != nil {
		if err == reverts.JobNotFound {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertBids(bids))
}

// handleListJobs lists the jobs posted by an employer, or assigned to a worker.
func (j *Jobs) handleListJobs(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	employer, worker := query.Get("employer"), query.Get("worker")
	if (employer == "") == (worker == "") {
		return utils.BadRequest(errors.New("query: exactly one of employer and worker is required"))
	}

	engine := j.engine()
	var ids []uint64
	if employer != "" {
		addr, err := gig.ParseAddress(employer)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "employer"))
		}
		if ids, err = engine.GetUserJobs(addr); err != nil {
			return err
		}
	} else {
		addr, err := gig.ParseAddress(worker)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "worker"))
		}
		if ids, err = engine.GetWorkerJobs(addr); err != nil {
			return err
		}
	}

	jobs := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := engine.GetJob(id)
		if err != nil {
			return err
		}
		jobs = append(jobs, convertJob(job))
	}
	return utils.WriteJSON(w, jobs)
}

func (j *Jobs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /jobs").
		HandlerFunc(utils.WrapHandlerFunc(j.handleListJobs))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /jobs/{id}").
		HandlerFunc(utils.WrapHandlerFunc(j.handleGetJob))
	sub.Path("/{id}/bids").
		Methods(http.MethodGet).
		Name("GET /jobs/{id}/bids").
		HandlerFunc(utils.WrapHandlerFunc(j.handleGetJobBids))
}
