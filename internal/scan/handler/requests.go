package handler

import "cargotrace/pkg/domain"

type scanRequest struct {
	ContainerID string `json:"container_id"`
	Concern     string `json:"concern,omitempty"`
}

func (r scanRequest) Validate() error {
	_, err := domain.ParseContainerID(r.ContainerID)
	return err
}
