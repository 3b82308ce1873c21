package webrtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"portfolio-snake/models"

	"github.com/pion/webrtc/v3"
)

var ErrNoLocalDescription = errors.New("peer connection has no local description")

// Events connects data channel traffic to the game. Open fires when the
// client's first data channel arrives, Close once the peer is gone. Any hook may be
// nil.
type Events struct {
	Open    func(client *models.Client)
	Message func(client *models.Client, msgType string, msg map[string]any)
	Close   func(client *models.Client)
}

type PeerConnection struct {
	PeerConnection *webrtc.PeerConnection
	Client         *models.Client

	mutex       sync.RWMutex
	dataChannel *webrtc.DataChannel
	done        chan struct{}
	closeOnce   sync.Once
}

// DataChannel returns the channel the client opened, or nil before it has.
func (p *PeerConnection) DataChannel() *webrtc.DataChannel {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.dataChannel
}

type Manager struct {
	peers      map[string]*PeerConnection
	mutex      sync.RWMutex
	iceServers []string
	events     Events
}

func NewManager(iceServers []string, events Events) *Manager {
	return &Manager{
		peers:      make(map[string]*PeerConnection),
		iceServers: iceServers,
		events:     events,
	}
}

// Accept answers a browser's offer for client. The browser creates the data
// channel; once it opens, the client's Send queue is pumped into it. The
// answer is returned after ICE gathering completes so it carries every
// candidate.
func (m *Manager) Accept(ctx context.Context, client *models.Client, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	peerConnection, err := webrtc.NewPeerConnection(m.getICEConfiguration())
	if err != nil {
		return nil, fmt.Errorf("creating peer connection: %w", err)
	}

	peer := &PeerConnection{
		PeerConnection: peerConnection,
		Client:         client,
		done:           make(chan struct{}),
	}

	peerConnection.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		log.Printf("ICE Connection State for %s: %s", client.ID, state.String())
		if state == webrtc.ICEConnectionStateFailed || state == webrtc.ICEConnectionStateClosed {
			go m.removeIfCurrent(peer)
		}
	})

	peerConnection.OnDataChannel(func(dc *webrtc.DataChannel) {
		m.attach(peer, dc)
	})

	m.mutex.Lock()
	old, replaced := m.peers[client.ID]
	m.peers[client.ID] = peer
	m.mutex.Unlock()
	if replaced {
		m.closePeer(old)
	}

	answer, err := m.answer(ctx, peerConnection, offer)
	if err != nil {
		m.removeIfCurrent(peer)
		return nil, err
	}
	return answer, nil
}

func (m *Manager) answer(ctx context.Context, pc *webrtc.PeerConnection, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := pc.SetRemoteDescription(offer); err != nil {
		return nil, fmt.Errorf("setting remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("setting local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	local := pc.LocalDescription()
	if local == nil {
		return nil, ErrNoLocalDescription
	}
	return local, nil
}

func (m *Manager) attach(peer *PeerConnection, dc *webrtc.DataChannel) {
	client := peer.Client

	peer.mutex.Lock()
	if peer.dataChannel != nil {
		peer.mutex.Unlock()
		log.Printf("Rejecting extra data channel %q from %s", dc.Label(), client.ID)
		if err := dc.Close(); err != nil {
			log.Printf("Closing extra data channel for %s: %v", client.ID, err)
		}
		return
	}
	peer.dataChannel = dc
	peer.mutex.Unlock()

	// the session must exist before the first message can arrive
	if m.events.Open != nil {
		m.events.Open(client)
	}

	dc.OnOpen(func() {
		log.Printf("DataChannel opened for client %s", client.ID)
		go pump(peer, dc)
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		msgType, data, err := decodeMessage(msg.Data)
		if err != nil {
			log.Printf("Dropping message from %s: %v", client.ID, err)
			return
		}
		if m.events.Message != nil {
			m.events.Message(client, msgType, data)
		}
	})

	dc.OnClose(func() {
		log.Printf("DataChannel closed for client %s", client.ID)
		go m.removeIfCurrent(peer)
	})

	dc.OnError(func(err error) {
		log.Printf("DataChannel error for %s: %v", client.ID, err)
	})
}

// pump forwards queued messages to the data channel until the peer goes away.
func pump(peer *PeerConnection, dc *webrtc.DataChannel) {
	for {
		select {
		case <-peer.done:
			return
		case message := <-peer.Client.Send:
			if err := dc.SendText(string(message)); err != nil {
				log.Printf("DataChannel send error for %s: %v", peer.Client.ID, err)
				return
			}
		}
	}
}

func (m *Manager) GetPeer(clientID string) (*PeerConnection, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	peer, exists := m.peers[clientID]
	return peer, exists
}

// RemovePeer closes the client's peer connection and fires the Close hook
// once.
func (m *Manager) RemovePeer(clientID string) {
	m.mutex.Lock()
	peer, exists := m.peers[clientID]
	if exists {
		delete(m.peers, clientID)
	}
	m.mutex.Unlock()

	if exists {
		m.closePeer(peer)
	}
}

// removeIfCurrent drops peer unless a newer connection for the same client
// has replaced it.
func (m *Manager) removeIfCurrent(peer *PeerConnection) {
	m.mutex.Lock()
	current, exists := m.peers[peer.Client.ID]
	if exists && current == peer {
		delete(m.peers, peer.Client.ID)
	}
	m.mutex.Unlock()

	m.closePeer(peer)
}

func (m *Manager) closePeer(peer *PeerConnection) {
	peer.closeOnce.Do(func() {
		close(peer.done)
		if err := peer.PeerConnection.Close(); err != nil {
			log.Printf("Closing peer connection for %s: %v", peer.Client.ID, err)
		}
		if m.events.Close != nil {
			m.events.Close(peer.Client)
		}
	})
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.peers)
}

// Close drops every peer.
func (m *Manager) Close() {
	m.mutex.Lock()
	peers := make([]*PeerConnection, 0, len(m.peers))
	for id, peer := range m.peers {
		peers = append(peers, peer)
		delete(m.peers, id)
	}
	m.mutex.Unlock()

	for _, peer := range peers {
		m.closePeer(peer)
	}
}

// getICEConfiguration returns the ICE server configuration with the
// configured STUN servers
func (m *Manager) getICEConfiguration() webrtc.Configuration {
	config := webrtc.Configuration{
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
	}
	if len(m.iceServers) > 0 {
		config.ICEServers = []webrtc.ICEServer{{URLs: m.iceServers}}
	}
	return config
}

func decodeMessage(data []byte) (string, map[string]any, error) {
	var messageData map[string]any
	if err := json.Unmarshal(data, &messageData); err != nil {
		return "", nil, fmt.Errorf("invalid JSON: %w", err)
	}

	msgType, ok := messageData["type"].(string)
	if !ok {
		return "", nil, errors.New("missing type field")
	}
	return msgType, messageData, nil
}
