package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live race state.
func stateKey(raceID string) string    { return "race:" + raceID + ":state" }
func decisionKey(raceID string) string { return "race:" + raceID + ":decision" }

// raceDataTTL bounds how long live race keys survive without a finish or
// cancel cleaning them up.
const raceDataTTL = 24 * time.Hour

// SetRaceState stores the live race snapshot JSON.
func (c *Client) SetRaceState(ctx context.Context, raceID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(raceID), []byte(state), raceDataTTL).Err()
}

// GetRaceState retrieves the live race snapshot JSON, nil when absent.
func (c *Client) GetRaceState(ctx context.Context, raceID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(raceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get race state: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetLatestDecision stores the most recent decision diagnostics JSON.
func (c *Client) SetLatestDecision(ctx context.Context, raceID string, decision json.RawMessage) error {
	return c.rdb.Set(ctx, decisionKey(raceID), []byte(decision), raceDataTTL).Err()
}

// GetLatestDecision retrieves the most recent decision JSON, nil when absent.
func (c *Client) GetLatestDecision(ctx context.Context, raceID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, decisionKey(raceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest decision: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteRaceData removes all live keys for a race.
func (c *Client) DeleteRaceData(ctx context.Context, raceID string) error {
	return c.rdb.Del(ctx, stateKey(raceID), decisionKey(raceID)).Err()
}
