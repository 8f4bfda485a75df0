//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"formview/internal/platform/config"
	platformkafka "formview/internal/platform/kafka"
	audit "formview/pkg/platform/audit"
	auditkafka "formview/pkg/platform/audit/store/kafka"
	"formview/pkg/testutil/containers"
)

func TestStoreAgainstRedpanda(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "formview.audit.test"

	client, err := platformkafka.New(config.KafkaConfig{Brokers: []string{broker.Broker}, AuditTopic: topic})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, client, topic))

	store := auditkafka.New(client, topic)
	require.NoError(t, store.Append(ctx, audit.Event{ID: "evt-1", Action: audit.EventSubmissionDisplayed, AssetUID: "a1"}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "a1", string(records[0].Key))
}
