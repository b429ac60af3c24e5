// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/p2p"

	"github.com/luxfi/nftbridge/utils"
)

const defaultSendTimeout = 30 * time.Second

var errNoRelayAck = errors.New("no relay node acknowledged the envelope")

type relayResult struct {
	NodeID ids.NodeID
	Err    error
}

// P2PRelayClient delivers envelopes to the relay nodes over the app
// request network. An envelope counts as accepted once any relay node
// acknowledges it.
type P2PRelayClient struct {
	log        log.Logger
	client     *p2p.Client
	relayNodes set.Set[ids.NodeID]
	timeout    time.Duration
}

func NewP2PRelayClient(logger log.Logger, client *p2p.Client, relayNodes []ids.NodeID) *P2PRelayClient {
	return &P2PRelayClient{
		log:        logger,
		client:     client,
		relayNodes: set.Of(relayNodes...),
		timeout:    defaultSendTimeout,
	}
}

type relayResponseHandler struct {
	results chan relayResult
}

func (r *relayResponseHandler) HandleResponse(
	_ context.Context,
	nodeID ids.NodeID,
	_ []byte,
	err error,
) {
	r.results <- relayResult{NodeID: nodeID, Err: err}
}

// Send requests delivery from every relay node and blocks until one
// acknowledges, every node errors, or the context is cancelled. The
// whole attempt is retried with backoff until the send timeout.
func (c *P2PRelayClient) Send(ctx context.Context, envelope *Envelope) error {
	requestBytes, err := envelope.Bytes()
	if err != nil {
		return err
	}

	return utils.WithRetriesTimeout(c.log, func() error {
		return c.send(ctx, requestBytes)
	}, c.timeout)
}

func (c *P2PRelayClient) send(ctx context.Context, requestBytes []byte) error {
	results := make(chan relayResult, c.relayNodes.Len())
	handler := relayResponseHandler{results: results}

	if err := c.client.Request(ctx, c.relayNodes, requestBytes, handler.HandleResponse); err != nil {
		return fmt.Errorf("failed to send relay request: %w", err)
	}

	for i := 0; i < c.relayNodes.Len(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result := <-results:
			if result.Err != nil {
				c.log.Debug("relay node rejected envelope",
					log.Stringer("nodeID", result.NodeID),
					log.Err(result.Err),
				)
				continue
			}
			return nil
		}
	}
	return errNoRelayAck
}
