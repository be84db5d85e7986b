// Package status aggregates a point-in-time snapshot of every
// component's introspection state -- the OS capability service, IP
// clients, IP servers, and network interfaces -- for operators and
// optional durable archival. It never mutates any of the components it
// reads from.
package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/network"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// IpClientStatus is a snapshot of one ipclient.Client.
type IpClientStatus struct {
	Name      string      `json:"name"`
	Connected bool        `json:"connected"`
	Socket    alid.Socket `json:"socket"`
}

// IpServerStatus is a snapshot of one ipserver.Server.
type IpServerStatus struct {
	Name      string        `json:"name"`
	Listening bool          `json:"listening"`
	Accepted  []alid.Socket `json:"accepted"`
}

// NetworkStatus is a snapshot of one network.NetworkInterface.
type NetworkStatus struct {
	Name       string         `json:"name"`
	ID         uuid.UUID      `json:"id"`
	IsUp       bool           `json:"is_up"`
	Technology string         `json:"technology"`
	QueueDepth int            `json:"queue_depth"`
	Owner      osal.Id        `json:"owner"`
	Status     network.Status `json:"-"`
}

// Snapshot is the full point-in-time aggregate.
type Snapshot struct {
	CapturedAt time.Time                `json:"captured_at"`
	OS         osal.OperatingSystemStatus `json:"os"`
	IpClients  []IpClientStatus         `json:"ip_clients"`
	IpServers  []IpServerStatus         `json:"ip_servers"`
	Networks   []NetworkStatus          `json:"networks"`
}

// ClientProvider is satisfied by ipclient.Client; kept as a local
// interface so this package does not import pkg/ipclient (which would
// otherwise be an import cycle risk once cmd/alhost wires both).
type ClientProvider interface {
	Connected() bool
	Socket() alid.Socket
}

// ServerProvider is satisfied by ipserver.Server.
type ServerProvider interface {
	Listening() bool
	Accepted() []alid.Socket
}

// NetworkProvider is satisfied by any network.NetworkInterface.
type NetworkProvider = network.NetworkInterface

// namedClient, namedServer, and namedNetwork pair a provider with the
// name it should be reported under.
type namedClient struct {
	name string
	c    ClientProvider
}
type namedServer struct {
	name string
	s    ServerProvider
}
type namedNetwork struct {
	name string
	n    NetworkProvider
	id   osal.Id
}

// Aggregator collects the named components a snapshot should cover.
// It is not safe for concurrent registration, but Snapshot itself may
// be called concurrently with other Snapshot calls.
type Aggregator struct {
	os       *osal.Service
	clients  []namedClient
	servers  []namedServer
	networks []namedNetwork
}

// NewAggregator creates an Aggregator reading thread/semaphore/queue/
// timer counts from os.
func NewAggregator(os *osal.Service) *Aggregator {
	return &Aggregator{os: os}
}

// RegisterClient adds an ipclient.Client to future snapshots under name.
func (a *Aggregator) RegisterClient(name string, c ClientProvider) {
	a.clients = append(a.clients, namedClient{name: name, c: c})
}

// RegisterServer adds an ipserver.Server to future snapshots under name.
func (a *Aggregator) RegisterServer(name string, s ServerProvider) {
	a.servers = append(a.servers, namedServer{name: name, s: s})
}

// RegisterNetwork adds a network.NetworkInterface to future snapshots
// under name, owned by the given logical thread id (used only to
// label the snapshot, not to read or write thread state).
func (a *Aggregator) RegisterNetwork(name string, n NetworkProvider, owner osal.Id) {
	a.networks = append(a.networks, namedNetwork{name: name, n: n, id: owner})
}

// Snapshot builds a full point-in-time status aggregate.
func (a *Aggregator) Snapshot() Snapshot {
	snap := Snapshot{
		CapturedAt: time.Now(),
		OS:         a.os.Status(true),
	}

	for _, nc := range a.clients {
		snap.IpClients = append(snap.IpClients, IpClientStatus{
			Name:      nc.name,
			Connected: nc.c.Connected(),
			Socket:    nc.c.Socket(),
		})
	}
	for _, ns := range a.servers {
		snap.IpServers = append(snap.IpServers, IpServerStatus{
			Name:      ns.name,
			Listening: ns.s.Listening(),
			Accepted:  ns.s.Accepted(),
		})
	}
	for _, nn := range a.networks {
		st := nn.n.Status()
		snap.Networks = append(snap.Networks, NetworkStatus{
			Name:       nn.name,
			ID:         nn.n.ID(),
			IsUp:       st.IsUp,
			Technology: st.Technology.String(),
			QueueDepth: nn.n.EventQueue().Depth(),
			Owner:      nn.id,
			Status:     st,
		})
	}
	return snap
}
