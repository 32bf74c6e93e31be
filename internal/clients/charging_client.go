package clients

import (
	"context"
	"fmt"

	"chargedash/internal/models"
)

// ChargingClient fetches charging records from the backend. No server-side
// filtering is assumed; the full visible set is returned.
type ChargingClient struct {
	base *BaseClient
}

// NewChargingClient returns client.
func NewChargingClient(base *BaseClient) *ChargingClient {
	return &ChargingClient{base: base}
}

// ListRecords returns all records visible to the token's session.
func (c *ChargingClient) ListRecords(ctx context.Context, token string) ([]models.ChargingRecord, error) {
	var records []models.ChargingRecord
	if err := c.base.GetJSON(ctx, "/charging/records", token, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord returns one record by identifier, for deep-link resolution.
func (c *ChargingClient) GetRecord(ctx context.Context, token string, id int64) (*models.ChargingRecord, error) {
	var record models.ChargingRecord
	if err := c.base.GetJSON(ctx, fmt.Sprintf("/charging/records/%d", id), token, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() string
}

// SessionRecords binds ChargingClient to the live session token so callers
// never handle credentials themselves.
type SessionRecords struct {
	client *ChargingClient
	tokens TokenSource
}

// NewSessionRecords returns the bound accessor.
func NewSessionRecords(client *ChargingClient, tokens TokenSource) *SessionRecords {
	return &SessionRecords{client: client, tokens: tokens}
}

// ListRecords lists records for the current session.
func (s *SessionRecords) ListRecords(ctx context.Context) ([]models.ChargingRecord, error) {
	return s.client.ListRecords(ctx, s.tokens.Token())
}

// GetRecord fetches one record for the current session.
func (s *SessionRecords) GetRecord(ctx context.Context, id int64) (*models.ChargingRecord, error) {
	return s.client.GetRecord(ctx, s.tokens.Token(), id)
}
