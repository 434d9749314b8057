package exchange

import (
	"sync"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
)

// UpdatePublisher forwards market updates leaving the core to downstream
// consumers (message queue, feed handlers).
//
// IMPORTANT: the records passed in are reused by the caller after
// Publish returns. Implementations must either process them
// synchronously or clone them before going asynchronous.
type UpdatePublisher interface {
	PublishUpdates(...*protocol.MarketUpdate)
}

// ResponsePublisher forwards client responses to the order gateway side.
// The same reuse contract as UpdatePublisher applies.
type ResponsePublisher interface {
	PublishResponses(...*protocol.ClientResponse)
}

// MemoryUpdatePublisher stores updates in memory, useful for testing.
type MemoryUpdatePublisher struct {
	mu      sync.RWMutex
	Updates []*protocol.MarketUpdate
}

func NewMemoryUpdatePublisher() *MemoryUpdatePublisher {
	return &MemoryUpdatePublisher{
		Updates: make([]*protocol.MarketUpdate, 0),
	}
}

// PublishUpdates appends clones of the updates to the in-memory slice.
func (m *MemoryUpdatePublisher) PublishUpdates(updates ...*protocol.MarketUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, update := range updates {
		cpy := new(protocol.MarketUpdate)
		*cpy = *update
		m.Updates = append(m.Updates, cpy)
	}
}

// Count returns the number of updates stored.
func (m *MemoryUpdatePublisher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Updates)
}

// Get returns the update at the specified index.
func (m *MemoryUpdatePublisher) Get(index int) *protocol.MarketUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Updates[index]
}

// MemoryResponsePublisher stores responses in memory, useful for testing.
type MemoryResponsePublisher struct {
	mu        sync.RWMutex
	Responses []*protocol.ClientResponse
}

func NewMemoryResponsePublisher() *MemoryResponsePublisher {
	return &MemoryResponsePublisher{
		Responses: make([]*protocol.ClientResponse, 0),
	}
}

// PublishResponses appends clones of the responses to the in-memory slice.
func (m *MemoryResponsePublisher) PublishResponses(responses ...*protocol.ClientResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, res := range responses {
		cpy := new(protocol.ClientResponse)
		*cpy = *res
		m.Responses = append(m.Responses, cpy)
	}
}

// Count returns the number of responses stored.
func (m *MemoryResponsePublisher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Responses)
}

// Get returns the response at the specified index.
func (m *MemoryResponsePublisher) Get(index int) *protocol.ClientResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Responses[index]
}

// DiscardPublisher drops everything, useful for benchmarking.
type DiscardPublisher struct{}

func NewDiscardPublisher() *DiscardPublisher {
	return &DiscardPublisher{}
}

func (p *DiscardPublisher) PublishUpdates(...*protocol.MarketUpdate) {}

func (p *DiscardPublisher) PublishResponses(...*protocol.ClientResponse) {}
