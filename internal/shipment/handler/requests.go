package handler

import (
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
)

type createShipmentRequest struct {
	BatchID            string `json:"batch_id"`
	NumberOfContainers int    `json:"number_of_containers"`
	TotalQuantity      int    `json:"total_quantity"`
}

func (r createShipmentRequest) Validate() error {
	if r.BatchID == "" {
		return dErrors.New(dErrors.CodeValidation, "batch_id is required")
	}
	if r.NumberOfContainers < 1 {
		return dErrors.New(dErrors.CodeValidation, "number_of_containers must be at least 1")
	}
	if r.TotalQuantity < r.NumberOfContainers {
		return dErrors.New(dErrors.CodeValidation, "total_quantity must cover every container")
	}
	return nil
}

type assignRequest struct {
	Role    string `json:"role"`
	ActorID string `json:"actor_id"`
}

func (r assignRequest) Validate() error {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return err
	}
	if !role.IsStageRole() {
		return dErrors.New(dErrors.CodeValidation, "role cannot hold a stage assignment")
	}
	if _, err := domain.ParseActorID(r.ActorID); err != nil {
		return err
	}
	return nil
}

type advanceRequest struct {
	ContainerID string `json:"container_id"`
}

func (r advanceRequest) Validate() error {
	_, err := domain.ParseContainerID(r.ContainerID)
	return err
}

type addDocumentRequest struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func (r addDocumentRequest) Validate() error {
	if r.Name == "" || r.URI == "" {
		return dErrors.New(dErrors.CodeValidation, "document name and uri are required")
	}
	return nil
}
