package signaling

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	registerTimeout = 10 * time.Second
	writeTimeout    = 5 * time.Second
)

type serverPeer struct {
	id         string
	clientType string
	conn       *websocket.Conn
	wmu        sync.Mutex
}

func (p *serverPeer) write(msg Message) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return p.conn.WriteJSON(msg)
}

// Server relays signaling messages between registered streamers and pads.
type Server struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[string]*serverPeer
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[string]*serverPeer),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("signaling upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	p, err := s.register(conn)
	if err != nil {
		logrus.Debugf("signaling register from %s: %v", r.RemoteAddr, err)
		return
	}
	defer s.unregister(p)

	log := logrus.WithFields(logrus.Fields{"peer": p.id, "type": p.clientType})
	log.Info("peer registered")

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("peer read: %v", err)
			}
			return
		}
		s.handle(p, msg)
	}
}

func (s *Server) register(conn *websocket.Conn) (*serverPeer, error) {
	_ = conn.SetReadDeadline(time.Now().Add(registerTimeout))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	p := &serverPeer{id: msg.ID, clientType: msg.ClientType, conn: conn}
	reject := func(reason string) (*serverPeer, error) {
		_ = p.write(Message{Type: TypeError, Msg: reason})
		return nil, &protocolError{reason}
	}

	switch {
	case msg.Type != TypeRegister:
		return reject("first message must be register")
	case msg.ID == "":
		return reject("missing id")
	case msg.ClientType != ClientTypeStreamer && msg.ClientType != ClientTypePad:
		return reject("unknown client type " + msg.ClientType)
	}

	s.mu.Lock()
	if _, taken := s.peers[msg.ID]; taken {
		s.mu.Unlock()
		return reject("id already registered: " + msg.ID)
	}
	s.peers[msg.ID] = p
	s.mu.Unlock()

	if err := p.write(Message{Type: TypeRegistered, ID: p.id}); err != nil {
		s.unregister(p)
		return nil, err
	}
	if p.clientType == ClientTypeStreamer {
		s.broadcastHosts()
	}
	return p, nil
}

func (s *Server) unregister(p *serverPeer) {
	s.mu.Lock()
	if s.peers[p.id] != p {
		s.mu.Unlock()
		return
	}
	delete(s.peers, p.id)
	s.mu.Unlock()

	logrus.WithField("peer", p.id).Info("peer unregistered")
	if p.clientType == ClientTypeStreamer {
		for _, pad := range s.byType(ClientTypePad) {
			_ = pad.write(Message{Type: TypeHostDisconnected, HostID: p.id})
		}
		s.broadcastHosts()
	}
}

func (s *Server) handle(p *serverPeer, msg Message) {
	switch msg.Type {
	case TypeOffer, TypeAnswer, TypeICECandidate:
		s.relay(p, msg)
	case TypeListHosts:
		_ = p.write(Message{Type: TypeHosts, List: s.hosts()})
	case TypePing:
		_ = p.write(Message{Type: TypePong})
	default:
		_ = p.write(Message{Type: TypeError, Msg: "unsupported message type " + msg.Type})
	}
}

func (s *Server) relay(from *serverPeer, msg Message) {
	s.mu.RLock()
	to, ok := s.peers[msg.Target]
	s.mu.RUnlock()
	if !ok {
		_ = from.write(Message{Type: TypeError, Msg: "unknown target " + msg.Target})
		return
	}
	out := Message{Type: msg.Type, From: from.id, Target: to.id, Payload: msg.Payload}
	if err := to.write(out); err != nil {
		logrus.WithField("peer", to.id).Debugf("relay %s: %v", msg.Type, err)
	}
}

func (s *Server) byType(clientType string) []*serverPeer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*serverPeer
	for _, p := range s.peers {
		if p.clientType == clientType {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) hosts() []HostInfo {
	list := []HostInfo{}
	for _, p := range s.byType(ClientTypeStreamer) {
		list = append(list, HostInfo{ID: p.id, Online: true})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Server) broadcastHosts() {
	list := s.hosts()
	for _, pad := range s.byType(ClientTypePad) {
		_ = pad.write(Message{Type: TypeHostsUpdated, List: list})
	}
}

type protocolError struct{ reason string }

func (e *protocolError) Error() string { return "signaling: " + e.reason }
