// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/nftbridge/utils"
)

// HTTPRelayClient delivers envelopes to a relay service over HTTP.
type HTTPRelayClient struct {
	log      log.Logger
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

type relayRequest struct {
	// hex encoding of the envelope.
	Envelope string `json:"envelope"`
}

func NewHTTPRelayClient(logger log.Logger, endpoint string) *HTTPRelayClient {
	return &HTTPRelayClient{
		log:      logger,
		client:   &http.Client{},
		endpoint: endpoint,
		timeout:  defaultSendTimeout,
	}
}

// Send posts the envelope to the relay endpoint, retrying with backoff
// until the relay accepts it or the send timeout elapses.
func (c *HTTPRelayClient) Send(ctx context.Context, envelope *Envelope) error {
	envBytes, err := envelope.Bytes()
	if err != nil {
		return err
	}
	body, err := json.Marshal(relayRequest{Envelope: hex.EncodeToString(envBytes)})
	if err != nil {
		return err
	}

	return utils.WithRetriesTimeout(c.log, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("relay returned status %d", resp.StatusCode)
		}
		return nil
	}, c.timeout)
}
