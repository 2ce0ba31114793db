package network

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/peers"
)

// selections routes FindSuitableNodeResults to the goroutines waiting for
// them.
type selections struct {
	mu      sync.Mutex
	waiting map[uuid.UUID]chan FindSuitableNodeResult
}

func newSelections() *selections {
	return &selections{
		waiting: make(map[uuid.UUID]chan FindSuitableNodeResult),
	}
}

// request emits a FindSuitableNodeRequest and waits for its result.
func (s *selections) request(ctx context.Context, out chan<- NodeAction, id uuid.UUID, shards []int64) (peers.Node, error) {
	ch := make(chan FindSuitableNodeResult, 1)

	s.mu.Lock()
	s.waiting[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.waiting, id)
		s.mu.Unlock()
	}()

	if !emit(ctx, out, FindSuitableNodeRequest{ID: id, Shards: shards}) {
		return peers.Node{}, ctx.Err()
	}

	select {
	case <-ctx.Done():
		return peers.Node{}, ctx.Err()
	case res := <-ch:
		return res.Node, res.Err
	}
}

func (s *selections) deliver(res FindSuitableNodeResult) {
	s.mu.Lock()
	ch, ok := s.waiting[res.ID]
	s.mu.Unlock()

	if !ok {
		return
	}

	select {
	case ch <- res:
	default:
	}
}
