// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gigclient is a Go client of the node API.
package gigclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/api/accounts"
	"github.com/gigstream/gigstream/api/blocks"
	"github.com/gigstream/gigstream/api/escrow"
	"github.com/gigstream/gigstream/api/events"
	"github.com/gigstream/gigstream/api/jobs"
	"github.com/gigstream/gigstream/api/node"
	"github.com/gigstream/gigstream/api/reputation"
	"github.com/gigstream/gigstream/api/stakes"
	"github.com/gigstream/gigstream/api/subscriptions"
	"github.com/gigstream/gigstream/api/transactions"
	"github.com/gigstream/gigstream/api/transfers"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/gigclient/common"
	"github.com/gigstream/gigstream/gigclient/httpclient"
	"github.com/gigstream/gigstream/gigclient/wsclient"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/tx"
)

const receiptPollInterval = 200 * time.Millisecond

var errNoWS = errors.New("not a websocket typed client")

type Client struct {
	httpConn *httpclient.Client
	wsConn   *wsclient.Client
}

func New(url string) *Client {
	return &Client{
		httpConn: httpclient.New(url),
	}
}

func NewWithWS(url string) (*Client, error) {
	wsClient, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpConn: httpclient.New(url),
		wsConn:   wsClient,
	}, nil
}

type Option func(*getOptions)

type getOptions struct {
	pending bool
}

func applyOptions(opts []Option) *getOptions {
	options := &getOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Pending makes tx lookups fall back to the txs waiting to be packed.
func Pending() Option {
	return func(o *getOptions) {
		o.pending = true
	}
}

func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}

func (c *Client) RawWSClient() *wsclient.Client {
	return c.wsConn
}

func (c *Client) ChainTag() (byte, error) {
	genesisBlock, err := c.Block("0")
	if err != nil {
		return 0, err
	}
	return genesisBlock.ID[31], nil
}

func (c *Client) Block(revision string) (*blocks.JSONCollapsedBlock, error) {
	return c.httpConn.GetBlock(revision)
}

func (c *Client) BestBlock() (*blocks.JSONCollapsedBlock, error) {
	return c.httpConn.GetBlock(common.BestRevision)
}

func (c *Client) Account(addr *gig.Address) (*accounts.Account, error) {
	return c.httpConn.GetAccount(addr)
}

func (c *Client) InspectClauses(calldata *accounts.BatchCallData) (accounts.BatchCallResults, error) {
	return c.httpConn.InspectClauses(calldata)
}

// InspectTxClauses executes the clauses of trx as sender, without sending it.
func (c *Client) InspectTxClauses(trx *tx.Transaction, sender *gig.Address) (accounts.BatchCallResults, error) {
	return c.InspectClauses(convertToBatchCallData(trx, sender))
}

func (c *Client) SendTransaction(trx *tx.Transaction) (*gig.Bytes32, error) {
	rlpTx, err := rlp.EncodeToBytes(trx)
	if err != nil {
		return nil, fmt.Errorf("unable to encode transaction - %w", err)
	}
	return c.SendTransactionRaw(rlpTx)
}

func (c *Client) SendTransactionRaw(rlpTx []byte) (*gig.Bytes32, error) {
	return c.httpConn.SendTransaction(&transactions.RawTx{Raw: hexutil.Encode(rlpTx)})
}

func (c *Client) Transaction(id *gig.Bytes32, opts ...Option) (*transactions.Transaction, error) {
	options := applyOptions(opts)
	return c.httpConn.GetTransaction(id, options.pending)
}

func (c *Client) TransactionReceipt(id *gig.Bytes32) (*transactions.Receipt, error) {
	return c.httpConn.GetTransactionReceipt(id)
}

// WaitForReceipt polls the receipt of id until the tx is packed or ctx is done.
func (c *Client) WaitForReceipt(ctx context.Context, id *gig.Bytes32) (*transactions.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(id)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for receipt of %v - %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.FilteredEvent, error) {
	return c.httpConn.FilterEvents(req)
}

func (c *Client) FilterTransfers(req *transfers.TransferFilter) ([]*transfers.FilteredTransfer, error) {
	return c.httpConn.FilterTransfers(req)
}

func (c *Client) Job(id uint64) (*jobs.Job, error) {
	return c.httpConn.GetJob(id)
}

func (c *Client) JobBids(id uint64) ([]*jobs.Bid, error) {
	return c.httpConn.GetJobBids(id)
}

func (c *Client) EmployerJobs(employer *gig.Address) ([]*jobs.Job, error) {
	return c.httpConn.GetEmployerJobs(employer)
}

func (c *Client) WorkerJobs(worker *gig.Address) ([]*jobs.Job, error) {
	return c.httpConn.GetWorkerJobs(worker)
}

func (c *Client) Escrow() (*escrow.Summary, error) {
	return c.httpConn.GetEscrow()
}

func (c *Client) ReputationToken() (*reputation.Token, error) {
	return c.httpConn.GetReputationToken()
}

func (c *Client) Reputation(addr *gig.Address) (*reputation.Holder, error) {
	return c.httpConn.GetReputation(addr)
}

func (c *Client) StakingPool() (*stakes.Pool, error) {
	return c.httpConn.GetStakingPool()
}

func (c *Client) Stake(addr *gig.Address) (*stakes.Stake, error) {
	return c.httpConn.GetStake(addr)
}

func (c *Client) NodeInfo() (*node.Info, error) {
	return c.httpConn.GetNodeInfo()
}

func (c *Client) Health() (*health.Status, error) {
	return c.httpConn.GetHealth()
}

// SubscribeBlocks streams blocks from pos, or from the best block when pos is empty.
func (c *Client) SubscribeBlocks(pos string) (*common.Subscription[*subscriptions.BlockMessage], error) {
	if c.wsConn == nil {
		return nil, errNoWS
	}
	return c.wsConn.SubscribeBlocks(wsclient.BlockQuery(pos))
}

// SubscribeEvents streams the events emitted by addr with the given topics. Nil matches anything.
func (c *Client) SubscribeEvents(pos string, addr *gig.Address, topics ...*gig.Bytes32) (*common.Subscription[*subscriptions.EventMessage], error) {
	if c.wsConn == nil {
		return nil, errNoWS
	}
	return c.wsConn.SubscribeEvents(wsclient.EventQuery(pos, addr, topics...))
}

func convertToBatchCallData(trx *tx.Transaction, sender *gig.Address) *accounts.BatchCallData {
	cls := make(accounts.Clauses, len(trx.Clauses()))
	for i, c := range trx.Clauses() {
		cls[i] = accounts.Clause{
			To:    c.To(),
			Value: (*math.HexOrDecimal256)(c.Value()),
			Data:  hexutil.Encode(c.Data()),
		}
	}

	return &accounts.BatchCallData{
		Clauses: cls,
		Gas:     trx.Gas(),
		Caller:  sender,
	}
}
