package commands

import (
	"fmt"

	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/config"
	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
	"github.com/benhaub/abstractionlayer/pkg/metrics"
	"github.com/benhaub/abstractionlayer/pkg/network"
	"github.com/benhaub/abstractionlayer/pkg/network/posixnet"
	"github.com/benhaub/abstractionlayer/pkg/network/simnet"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// bringUpInterface constructs and brings up one network.NetworkInterface
// per cfg, owned by a dedicated osal thread that runs its EventQueue's
// MainLoop for the lifetime of the process. The interface's queue is
// always constructed from inside that thread's body, since the queue's
// owner id is the thread's own logical Id -- the one value only
// available once the thread has actually started.
func bringUpInterface(os *osal.Service, cfg config.InterfaceConfig, stop <-chan struct{}) (network.NetworkInterface, error) {
	type result struct {
		iface network.NetworkInterface
		err   error
	}
	ready := make(chan result, 1)

	threadName := cfg.Name + "-evq"
	_, tErr := os.CreateThread(osal.PriorityNormal, threadName, nil, 0, func(id osal.Id, _ any) {
		queue, qErr := eventqueue.New(os, id, metrics.NewEventQueueMetrics())
		if qErr != nil {
			ready <- result{err: fmt.Errorf("create event queue for %q: %w", cfg.Name, qErr)}
			return
		}

		var iface network.NetworkInterface
		switch cfg.Kind {
		case "sim":
			iface = simnet.New(queue)
		default:
			iface = posixnet.New(queue)
		}

		name, nErr := alid.NewName(cfg.Name)
		if nErr != nil {
			ready <- result{err: fmt.Errorf("interface name %q: %w", cfg.Name, nErr)}
			return
		}
		if err := iface.Configure(network.Params{Name: name, MTU: cfg.MTU}); err != nil {
			ready <- result{err: fmt.Errorf("configure %q: %w", cfg.Name, err)}
			return
		}
		if err := iface.Init(); err != nil {
			ready <- result{err: fmt.Errorf("init %q: %w", cfg.Name, err)}
			return
		}
		if err := iface.Up(); err != nil {
			ready <- result{err: fmt.Errorf("bring up %q: %w", cfg.Name, err)}
			return
		}

		ready <- result{iface: iface}
		queue.MainLoop(stop)
	})
	if tErr != nil {
		return nil, fmt.Errorf("create event-queue thread for %q: %w", cfg.Name, tErr)
	}

	r := <-ready
	return r.iface, r.err
}
