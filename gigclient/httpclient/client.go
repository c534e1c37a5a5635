// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client to interact with a GigStream node.
// It offers methods to retrieve blocks, transactions, logs and the state of the
// escrow, reputation and staking ledgers.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/gigstream/gigstream/api/accounts"
	"github.com/gigstream/gigstream/api/blocks"
	"github.com/gigstream/gigstream/api/escrow"
	"github.com/gigstream/gigstream/api/events"
	"github.com/gigstream/gigstream/api/jobs"
	"github.com/gigstream/gigstream/api/node"
	"github.com/gigstream/gigstream/api/reputation"
	"github.com/gigstream/gigstream/api/stakes"
	"github.com/gigstream/gigstream/api/transactions"
	"github.com/gigstream/gigstream/api/transfers"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/gigclient/common"
	"github.com/gigstream/gigstream/health"
)

// Client represents the HTTP client for interacting with a node.
type Client struct {
	url     string
	c       *http.Client
	genesis atomic.Pointer[blocks.JSONCollapsedBlock]
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// GetAccount retrieves the balance of addr.
func (c *Client) GetAccount(addr *gig.Address) (*accounts.Account, error) {
	body, err := c.httpGET(c.url + "/accounts/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}

	var account accounts.Account
	if err = json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}
	return &account, nil
}

// InspectClauses executes a batch of clauses on the best state without sending a tx.
func (c *Client) InspectClauses(calldata *accounts.BatchCallData) (accounts.BatchCallResults, error) {
	body, err := c.httpPOST(c.url+"/accounts/*", calldata)
	if err != nil {
		return nil, fmt.Errorf("unable to request inspect clauses - %w", err)
	}

	var results accounts.BatchCallResults
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("unable to unmarshal inspection result - %w", err)
	}
	return results, nil
}

// GetTransaction retrieves a packed tx, or a pending one when isPending is set.
func (c *Client) GetTransaction(txID *gig.Bytes32, isPending bool) (*transactions.Transaction, error) {
	u := c.url + "/transactions/" + txID.String()
	if isPending {
		u += "?pending=true"
	}

	body, err := c.httpGET(u)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve transaction - %w", err)
	}

	var trx transactions.Transaction
	if err = json.Unmarshal(body, &trx); err != nil {
		return nil, fmt.Errorf("unable to unmarshal transaction - %w", err)
	}
	return &trx, nil
}

// GetTransactionReceipt retrieves the receipt of a packed tx.
func (c *Client) GetTransactionReceipt(txID *gig.Bytes32) (*transactions.Receipt, error) {
	body, err := c.httpGET(c.url + "/transactions/" + txID.String() + "/receipt")
	if err != nil {
		return nil, fmt.Errorf("unable to fetch receipt - %w", err)
	}

	var receipt transactions.Receipt
	if err = json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}

// SendTransaction sends a rlp encoded tx and returns its id.
func (c *Client) SendTransaction(obj *transactions.RawTx) (*gig.Bytes32, error) {
	body, err := c.httpPOST(c.url+"/transactions", obj)
	if err != nil {
		return nil, fmt.Errorf("unable to send raw transaction - %w", err)
	}

	var res struct {
		ID gig.Bytes32 `json:"id"`
	}
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal send transaction result - %w", err)
	}
	return &res.ID, nil
}

// GetBlock retrieves a block by number, id or "best".
func (c *Client) GetBlock(revision string) (*blocks.JSONCollapsedBlock, error) {
	if revision == "0" && c.genesis.Load() != nil {
		return c.genesis.Load(), nil
	}
	body, err := c.httpGET(c.url + "/blocks/" + revision)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve block - %w", err)
	}

	var block blocks.JSONCollapsedBlock
	if err = json.Unmarshal(body, &block); err != nil {
		return nil, fmt.Errorf("unable to unmarshal block - %w", err)
	}

	if block.Number == 0 {
		// Cache the genesis block for future requests
		c.genesis.Store(&block)
	}
	return &block, nil
}

// FilterEvents queries the indexed events.
func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.FilteredEvent, error) {
	body, err := c.httpPOST(c.url+"/logs/event", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}

	var filtered []*events.FilteredEvent
	if err = json.Unmarshal(body, &filtered); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return filtered, nil
}

// FilterTransfers queries the indexed value transfers.
func (c *Client) FilterTransfers(req *transfers.TransferFilter) ([]*transfers.FilteredTransfer, error) {
	body, err := c.httpPOST(c.url+"/logs/transfer", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter transfers - %w", err)
	}

	var filtered []*transfers.FilteredTransfer
	if err = json.Unmarshal(body, &filtered); err != nil {
		return nil, fmt.Errorf("unable to unmarshal transfers - %w", err)
	}
	return filtered, nil
}

// GetJob retrieves a job of the escrow engine.
func (c *Client) GetJob(id uint64) (*jobs.Job, error) {
	body, err := c.httpGET(fmt.Sprintf("%s/jobs/%d", c.url, id))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve job - %w", err)
	}

	var job jobs.Job
	if err = json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("unable to unmarshal job - %w", err)
	}
	return &job, nil
}

// GetJobBids retrieves the bids placed on a job, in placement order.
func (c *Client) GetJobBids(id uint64) ([]*jobs.Bid, error) {
	body, err := c.httpGET(fmt.Sprintf("%s/jobs/%d/bids", c.url, id))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve bids - %w", err)
	}

	var bids []*jobs.Bid
	if err = json.Unmarshal(body, &bids); err != nil {
		return nil, fmt.Errorf("unable to unmarshal bids - %w", err)
	}
	return bids, nil
}

// GetEmployerJobs retrieves the jobs posted by employer.
func (c *Client) GetEmployerJobs(employer *gig.Address) ([]*jobs.Job, error) {
	return c.listJobs("employer", employer)
}

// GetWorkerJobs retrieves the jobs assigned to worker.
func (c *Client) GetWorkerJobs(worker *gig.Address) ([]*jobs.Job, error) {
	return c.listJobs("worker", worker)
}

func (c *Client) listJobs(key string, addr *gig.Address) ([]*jobs.Job, error) {
	query := url.Values{key: []string{addr.String()}}
	body, err := c.httpGET(c.url + "/jobs?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("unable to list jobs - %w", err)
	}

	var list []*jobs.Job
	if err = json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unable to unmarshal jobs - %w", err)
	}
	return list, nil
}

// GetEscrow retrieves the global view of the escrow engine.
func (c *Client) GetEscrow() (*escrow.Summary, error) {
	return get[escrow.Summary](c, "/escrow", "escrow summary")
}

// GetReputationToken retrieves the metadata and supply of the reputation token.
func (c *Client) GetReputationToken() (*reputation.Token, error) {
	return get[reputation.Token](c, "/reputation", "reputation token")
}

// GetReputation retrieves the reputation balance of addr.
func (c *Client) GetReputation(addr *gig.Address) (*reputation.Holder, error) {
	return get[reputation.Holder](c, "/reputation/"+addr.String(), "reputation")
}

// GetStakingPool retrieves the global view of the staking ledger.
func (c *Client) GetStakingPool() (*stakes.Pool, error) {
	return get[stakes.Pool](c, "/stakes", "staking pool")
}

// GetStake retrieves the stake of addr.
func (c *Client) GetStake(addr *gig.Address) (*stakes.Stake, error) {
	return get[stakes.Stake](c, "/stakes/"+addr.String(), "stake")
}

// GetNodeInfo retrieves the chain tag, best block and pending tx count of the node.
func (c *Client) GetNodeInfo() (*node.Info, error) {
	return get[node.Info](c, "/node/info", "node info")
}

// GetHealth retrieves the health status of the node. An unhealthy node is not an error.
func (c *Client) GetHealth() (*health.Status, error) {
	body, status, err := c.RawHTTPGet("/node/health")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve health - %w", err)
	}
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("unable to retrieve health - http error - Status Code %d - %s - %w", status, body, common.ErrNot200Status)
	}

	var res health.Status
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal health - %w", err)
	}
	return &res, nil
}

func get[T any](c *Client, path, what string) (*T, error) {
	body, err := c.httpGET(c.url + path)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve %s - %w", what, err)
	}

	var res T
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s - %w", what, err)
	}
	return &res, nil
}

// RawHTTPPost sends a raw HTTP POST request to the specified path with the provided data.
func (c *Client) RawHTTPPost(path string, calldata any) ([]byte, int, error) {
	data, err := marshalPayload(calldata)
	if err != nil {
		return nil, 0, err
	}
	return c.rawHTTPRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewReader(data))
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	body, status, err := c.rawHTTPRequest(method, url, payload)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s - %w", bytes.TrimSpace(body), common.ErrNotFound)
	default:
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", status, bytes.TrimSpace(body), common.ErrNot200Status)
	}
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func marshalPayload(payload any) ([]byte, error) {
	if data, ok := payload.([]byte); ok {
		return data, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return data, nil
}
