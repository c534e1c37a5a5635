// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// Stake is the position of a participant. PendingReward is evaluated at the current time.
type Stake struct {
	Address       gig.Address           `json:"address"`
	Amount        *math.HexOrDecimal256 `json:"amount"`
	Timestamp     uint64                `json:"timestamp"`
	UnlockTime    uint64                `json:"unlockTime"`
	Active        bool                  `json:"active"`
	Unlocked      bool                  `json:"unlocked"`
	TotalStaked   *math.HexOrDecimal256 `json:"totalStaked"`
	PendingReward *math.HexOrDecimal256 `json:"pendingReward"`
}

// Pool is the global view of the staking ledger.
type Pool struct {
	Address         gig.Address           `json:"address"`
	Owner           gig.Address           `json:"owner"`
	TotalStaked     *math.HexOrDecimal256 `json:"totalStaked"`
	Balance         *math.HexOrDecimal256 `json:"balance"`
	MinStake        *math.HexOrDecimal256 `json:"minStake"`
	StakingDuration uint64                `json:"stakingDuration"`
	RewardRate      uint64                `json:"rewardRate"`
}

type Stakes struct {
	repo   *chain.Repository
	stater *state.Stater
	clock  func() uint64
}

func New(repo *chain.Repository, stater *state.Stater) *Stakes {
	return &Stakes{
		repo:   repo,
		stater: stater,
		clock:  func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// now never goes behind the best block.
func (s *Stakes) now() uint64 {
	return max(s.clock(), s.repo.BestBlock().Header().Timestamp())
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := gig.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	pool := builtin.Staking.WithState(s.stater.NewState())

	stake, err := pool.GetStake(addr)
	if err != nil {
		return err
	}
	total, err := pool.TotalStaked(addr)
	if err != nil {
		return err
	}
	now := s.now()
	reward, err := pool.CalculateReward(addr, now)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Stake{
		Address:       addr,
		Amount:        (*math.HexOrDecimal256)(stake.Amount),
		Timestamp:     stake.Timestamp,
		UnlockTime:    stake.UnlockTime,
		Active:        stake.Active,
		Unlocked:      stake.Active && now >= stake.UnlockTime,
		TotalStaked:   (*math.HexOrDecimal256)(total),
		PendingReward: (*math.HexOrDecimal256)(reward),
	})
}

func (s *Stakes) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	pool := builtin.Staking.WithState(s.stater.NewState())

	owner, err := pool.Owner()
	if err != nil {
		return err
	}
	total, err := pool.GetTotalStaked()
	if err != nil {
		return err
	}
	balance, err := pool.PoolBalance()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Pool{
		Address:         pool.Address(),
		Owner:           owner,
		TotalStaked:     (*math.HexOrDecimal256)(total),
		Balance:         (*math.HexOrDecimal256)(balance),
		MinStake:        (*math.HexOrDecimal256)(gig.MinStake),
		StakingDuration: gig.StakingDuration,
		RewardRate:      gig.RewardRate,
	})
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /stakes").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
}
