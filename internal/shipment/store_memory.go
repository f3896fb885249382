package shipment

import (
	"context"
	"sort"
	"sync"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/sentinel"
)

// InMemory keeps the development and test implementation lightweight. It
// intentionally favors clarity over performance.
type InMemory struct {
	mu         sync.RWMutex
	shipments  map[domain.ShipmentHash]*Shipment
	containers map[domain.ContainerID]*Container
}

func NewInMemory() *InMemory {
	return &InMemory{
		shipments:  make(map[domain.ShipmentHash]*Shipment),
		containers: make(map[domain.ContainerID]*Container),
	}
}

func (s *InMemory) CreateShipment(_ context.Context, sh *Shipment, containers []Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shipments[sh.ShipmentHash]; ok {
		return sentinel.ErrAlreadyUsed
	}
	for i := range containers {
		if _, ok := s.containers[containers[i].ContainerID]; ok {
			return sentinel.ErrAlreadyUsed
		}
	}

	clone := cloneShipment(sh)
	s.shipments[sh.ShipmentHash] = clone
	for i := range containers {
		c := containers[i]
		s.containers[c.ContainerID] = &c
	}
	return nil
}

func (s *InMemory) FindShipment(_ context.Context, hash domain.ShipmentHash) (*Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneShipment(sh), nil
}

func (s *InMemory) FindContainer(_ context.Context, id domain.ContainerID) (*Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemory) ListContainers(_ context.Context, hash domain.ShipmentHash) ([]Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.shipments[hash]; !ok {
		return nil, sentinel.ErrNotFound
	}

	var out []Container
	for _, c := range s.containers {
		if c.ShipmentHash == hash {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContainerNumber < out[j].ContainerNumber })
	return out, nil
}

func (s *InMemory) AdvanceContainer(_ context.Context, id domain.ContainerID, from, to lifecycle.ContainerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Status != from {
		return sentinel.ErrConflict
	}
	c.Status = to
	return nil
}

func (s *InMemory) SetShipmentStatus(_ context.Context, hash domain.ShipmentHash, status lifecycle.ShipmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[hash]
	if !ok {
		return sentinel.ErrNotFound
	}
	sh.Status = status
	return nil
}

func (s *InMemory) LockShipment(_ context.Context, hash domain.ShipmentHash, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[hash]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sh.IsLocked {
		return sentinel.ErrInvalidState
	}
	sh.IsLocked = true
	sh.TxHash = txHash
	return nil
}

func (s *InMemory) Assign(_ context.Context, hash domain.ShipmentHash, role domain.Role, a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[hash]
	if !ok {
		return sentinel.ErrNotFound
	}
	sh.setAssignment(role, a)
	return nil
}

func (s *InMemory) AddDocument(_ context.Context, hash domain.ShipmentHash, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[hash]
	if !ok {
		return sentinel.ErrNotFound
	}
	sh.SupportingDocuments = append(sh.SupportingDocuments, doc)
	return nil
}

func (s *InMemory) ListAssigned(_ context.Context, actor domain.ActorID, role domain.Role) ([]Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Shipment
	for _, sh := range s.shipments {
		a := sh.AssignmentFor(role)
		if a != nil && a.Actor == actor {
			out = append(out, *cloneShipment(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// cloneShipment copies the shipment including its pointer-valued assignment
// slots so callers cannot mutate store state.
func cloneShipment(sh *Shipment) *Shipment {
	clone := *sh
	if sh.AssignedTransporter != nil {
		a := *sh.AssignedTransporter
		clone.AssignedTransporter = &a
	}
	if sh.AssignedWarehouse != nil {
		a := *sh.AssignedWarehouse
		clone.AssignedWarehouse = &a
	}
	if sh.AssignedRetailer != nil {
		a := *sh.AssignedRetailer
		clone.AssignedRetailer = &a
	}
	clone.SupportingDocuments = append([]Document(nil), sh.SupportingDocuments...)
	return &clone
}
