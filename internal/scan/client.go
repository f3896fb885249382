package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
)

// Client submits scans to the verification endpoint over HTTP. It
// implements Verifier so the pipeline is indifferent to running in-process
// (tests, server-side tools) or against a remote service (scanner devices).
//
// The actor identity rides in the bearer token; the server fills it in from
// the request context, so VerifyRequest.Actor and Role are ignored here.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type scanRequestBody struct {
	ContainerID string `json:"container_id"`
	Concern     string `json:"concern,omitempty"`
}

type scanResponseBody struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`

	Container *struct {
		ContainerID    string `json:"container_id"`
		PreviousStatus string `json:"previous_status"`
		CurrentStatus  string `json:"current_status"`
	} `json:"container,omitempty"`

	Shipment *struct {
		ShipmentHash       string `json:"shipment_hash"`
		PreviousStatus     string `json:"previous_status"`
		CurrentStatus      string `json:"current_status"`
		StatusChanged      bool   `json:"status_changed"`
		AllComplete        bool   `json:"all_complete"`
		ScannedCount       int    `json:"scanned_count"`
		PendingCount       int    `json:"pending_count"`
		NumberOfContainers int    `json:"number_of_containers"`
	} `json:"shipment,omitempty"`

	Concern string `json:"concern,omitempty"`

	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Verify posts the scan and decodes the verdict. Transport failures come
// back as errors so the pipeline can treat them as retryable NETWORK_ERROR
// rather than verdicts.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*Verdict, error) {
	body, err := json.Marshal(scanRequestBody{
		ContainerID: req.ContainerID.String(),
		Concern:     req.Concern,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal scan request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scan request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification service unreachable")
	}
	defer resp.Body.Close()

	var decoded scanResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed verification response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.Code(decoded.Error), decoded.ErrorDescription)
	}

	v := &Verdict{
		Accepted: decoded.Accepted,
		Reason:   lifecycle.RejectionReason(decoded.Reason),
		Message:  decoded.Message,
		Concern:  decoded.Concern,
	}
	if decoded.Container != nil {
		v.Container = &ContainerResult{
			ContainerID:    domain.ContainerID(decoded.Container.ContainerID),
			PreviousStatus: lifecycle.ContainerStatus(decoded.Container.PreviousStatus),
			CurrentStatus:  lifecycle.ContainerStatus(decoded.Container.CurrentStatus),
		}
	}
	if decoded.Shipment != nil {
		v.Shipment = &ShipmentResult{
			ShipmentHash:       domain.ShipmentHash(decoded.Shipment.ShipmentHash),
			PreviousStatus:     lifecycle.ShipmentStatus(decoded.Shipment.PreviousStatus),
			CurrentStatus:      lifecycle.ShipmentStatus(decoded.Shipment.CurrentStatus),
			StatusChanged:      decoded.Shipment.StatusChanged,
			AllComplete:        decoded.Shipment.AllComplete,
			ScannedCount:       decoded.Shipment.ScannedCount,
			PendingCount:       decoded.Shipment.PendingCount,
			NumberOfContainers: decoded.Shipment.NumberOfContainers,
		}
	}
	return v, nil
}
