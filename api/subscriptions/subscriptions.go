// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	subscriptionIDHeader = "X-Subscription-Id"
)

type Subscriptions struct {
	backtraceLimit uint32
	repo           *chain.Repository
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
	blockCache     *messageCache[*BlockMessage]
	eventCache     *messageCache[[]*EventMessage]
}

func New(repo *chain.Repository, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		backtraceLimit: backtraceLimit,
		repo:           repo,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done:       make(chan struct{}),
		blockCache: newMessageCache[*BlockMessage](backtraceLimit),
		eventCache: newMessageCache[[]*EventMessage](backtraceLimit),
	}
}

// parsePosition resolves the block after which streaming starts. It defaults to best.
func (s *Subscriptions) parsePosition(posStr string) (uint32, error) {
	best := s.repo.BestBlock().Header().Number()
	if posStr == "" {
		return best, nil
	}
	rev, err := utils.ParseRevision(posStr)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	blk, err := utils.GetBlock(rev, s.repo)
	if err != nil {
		if s.repo.IsNotFound(err) {
			return 0, utils.BadRequest(errors.New("pos: block not found"))
		}
		return 0, err
	}
	pos := blk.Header().Number()
	if best-pos > s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

func parseAddress(s string) (*gig.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := gig.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseTopic(s string) (*gig.Bytes32, error) {
	if s == "" {
		return nil, nil
	}
	topic, err := gig.ParseBytes32(s)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Subscriptions) newEventReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	position, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}

	filter := &EventFilter{}
	if filter.Address, err = parseAddress(query.Get("addr")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	topics := []**gig.Bytes32{&filter.Topic0, &filter.Topic1, &filter.Topic2, &filter.Topic3, &filter.Topic4}
	for i, topic := range topics {
		key := fmt.Sprintf("t%d", i)
		if *topic, err = parseTopic(query.Get(key)); err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, key))
		}
	}
	return newEventReader(s.repo, position, filter, s.eventCache), nil
}

func (s *Subscriptions) newBlockReader(req *http.Request) (msgReader, error) {
	position, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return nil, err
	}
	return newBlockReader(s.repo, position, s.blockCache), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	var (
		reader msgReader
		err    error
	)
	switch subject := mux.Vars(req)["subject"]; subject {
	case "event":
		reader, err = s.newEventReader(req)
	case "block":
		reader, err = s.newBlockReader(req)
	default:
		return utils.NotFound(errors.Errorf("unsupported subject: %v", subject))
	}
	if err != nil {
		return err
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	err = s.pipe(conn, reader, closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	header := http.Header{}
	header.Set(subscriptionIDHeader, uuid.New())
	conn, err := s.upgrader.Upgrade(w, req, header)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// start read loop to handle close event
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(closed)

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var closeMsg []byte
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}

	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, closed chan struct{}) error {
	ticker := s.repo.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.done:
				return nil
			case <-closed:
				return nil
			default:
			}
			continue
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-ticker.C():
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close terminates all subscriptions and waits for them to exit.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions/{subject}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}

// IsWebsocketUpgrade reports whether req asks for a websocket.
func IsWebsocketUpgrade(req *http.Request) bool {
	return strings.EqualFold(req.Header.Get("Upgrade"), "websocket")
}
