// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package events publishes pipeline run outcomes to NATS JetStream.

Every finished run produces one RunCompletedEvent on the configured subject
(default showroom.pipeline.completed) in the SHOWROOM_PIPELINE stream.
Downstream services such as cache warmers or search indexers subscribe to
the subject instead of polling the recommendations table.

# Build Tags

NATS support is compiled only with the nats build tag:

	go build -tags nats ./cmd/server

Without the tag, Start returns ErrNATSNotEnabled and the pipeline runs
without event publication.

# Components

  - EmbeddedServer: in-process NATS server with JetStream (NATS_EMBEDDED=true)
  - EnsureStream: idempotent stream creation and update
  - Publisher: Watermill NATS publisher registered as a pipeline run observer
  - Components: lifecycle wrapper supervised in the messaging layer

Messages carry the run ID in the Nats-Msg-Id header, so a report published
twice within the stream's duplicate window is stored once.
*/
package events
