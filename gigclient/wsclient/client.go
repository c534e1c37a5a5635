// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gigstream/gigstream/api/subscriptions"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/gigclient/common"
)

type Client struct {
	host   string
	scheme string
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// EventQuery builds the query of an event subscription. Nil fields match anything,
// and an empty pos starts from the best block.
func EventQuery(pos string, addr *gig.Address, topics ...*gig.Bytes32) string {
	query := url.Values{}
	if pos != "" {
		query.Set("pos", pos)
	}
	if addr != nil {
		query.Set("addr", addr.String())
	}
	for i, topic := range topics {
		if topic != nil {
			query.Set(fmt.Sprintf("t%d", i), topic.String())
		}
	}
	return query.Encode()
}

// BlockQuery builds the query of a block subscription.
func BlockQuery(pos string) string {
	if pos == "" {
		return ""
	}
	return url.Values{"pos": []string{pos}}.Encode()
}

func (c *Client) SubscribeEvents(query string) (*common.Subscription[*subscriptions.EventMessage], error) {
	conn, err := c.connect("/subscriptions/event", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	return subscribe[subscriptions.EventMessage](conn), nil
}

func (c *Client) SubscribeBlocks(query string) (*common.Subscription[*subscriptions.BlockMessage], error) {
	conn, err := c.connect("/subscriptions/block", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	return subscribe[subscriptions.BlockMessage](conn), nil
}

// subscribe reads messages of type T from conn until it fails or is unsubscribed.
// The channel is closed after the last message.
func subscribe[T any](conn *websocket.Conn) *common.Subscription[*T] {
	var (
		eventChan = make(chan common.EventWrapper[*T])
		done      = make(chan struct{})
		closeOnce sync.Once
	)

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				select {
				case <-done:
				case eventChan <- common.EventWrapper[*T]{Error: fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)}:
				}
				return
			}

			select {
			case <-done:
				return
			case eventChan <- common.EventWrapper[*T]{Data: &data}:
			}
		}
	}()

	return &common.Subscription[*T]{
		EventChan: eventChan,
		Unsubscribe: func() error {
			var err error
			closeOnce.Do(func() {
				close(done)
				err = conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				conn.Close()
			})
			return err
		},
	}
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w - status %d", err, resp.StatusCode)
		}
		return nil, err
	}
	return conn, nil
}
