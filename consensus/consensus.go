// Package consensus defines the narrow boundary contract the ledger core
// uses to talk to an ORV-style election engine, plus one small in-memory
// implementation for exercising the core without a live consensus process.
package consensus

import (
	"sync"

	"github.com/burst-network/burstnode/confirmation"
	"github.com/burst-network/burstnode/types"
)

// Collaborator is what the block processor depends on for confirmation.
// The core emits confirmation requests post-commit through the one method
// below; the query/mutate operations are the package functions
// confirmation.IsBlockConfirmed and confirmation.AdvanceConfirmationHeight,
// which a real implementation calls back once quorum is reached.
type Collaborator interface {
	NotifyConfirmationRequest(req confirmation.ConfirmationRequest)
}

// DefaultCollaborator is a minimal, testable Collaborator: it just records
// the requests it receives, for tests and for standalone node operation
// without a real election engine wired in.
type DefaultCollaborator struct {
	mu       sync.Mutex
	requests []confirmation.ConfirmationRequest
}

// NewDefaultCollaborator returns an empty DefaultCollaborator.
func NewDefaultCollaborator() *DefaultCollaborator {
	return &DefaultCollaborator{}
}

// NotifyConfirmationRequest records req.
func (c *DefaultCollaborator) NotifyConfirmationRequest(req confirmation.ConfirmationRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
}

// Requests returns every confirmation request recorded so far, oldest
// first.
func (c *DefaultCollaborator) Requests() []confirmation.ConfirmationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]confirmation.ConfirmationRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// ForkEvent is escalated to consensus when two blocks both claim the same
// previous hash on an account chain.
type ForkEvent struct {
	Account           types.Address
	ExistingBlockHash types.Hash
	IncomingBlockHash types.Hash
}

// ForkObserver additionally receives escalated forks, for collaborators
// that want to drive manual conflict resolution.
type ForkObserver interface {
	NotifyFork(event ForkEvent)
}

// NotifyFork accepts a fork event and discards it.
func (c *DefaultCollaborator) NotifyFork(event ForkEvent) {
	// The default collaborator neither stores fork events (Requests holds
	// confirmation requests only) nor attempts fork resolution.
}
