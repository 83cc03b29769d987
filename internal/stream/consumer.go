// Package stream consumes employee change events from a DynamoDB stream.
//
// Delivery is at least once: shard iterators are not checkpointed anywhere
// durable, so a restart replays whatever the trim horizon still holds. The
// orchestrator's idempotency guard makes replays harmless.
package stream

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/innovatech/deskprov/internal/orchestrator"
	"github.com/innovatech/deskprov/internal/util/async"
	"github.com/innovatech/deskprov/pkg/cloud"
)

// Handler processes one decoded change event.
type Handler interface {
	Process(ctx context.Context, ev orchestrator.Event) error
}

// Consumer polls every shard of one stream and hands INSERT events to the
// handler. Records within a batch are processed in parallel; failures are
// logged and counted, never fatal to the consumer loop.
type Consumer struct {
	streams   cloud.StreamsAPI
	handler   Handler
	streamARN string
	pollDelay time.Duration
	refresh   time.Duration

	mu     sync.Mutex
	active map[string]context.CancelFunc
	done   map[string]struct{}
}

// NewConsumer creates a consumer for the given stream.
func NewConsumer(api cloud.StreamsAPI, handler Handler, streamARN string, pollDelay time.Duration) *Consumer {
	return &Consumer{
		streams:   api,
		handler:   handler,
		streamARN: streamARN,
		pollDelay: pollDelay,
		refresh:   30 * time.Second,
		active:    make(map[string]context.CancelFunc),
		done:      make(map[string]struct{}),
	}
}

// Run consumes the stream until the context is cancelled. Each describe pass
// re-opens shards whose reader failed and picks up new shards from resharding;
// cleanly closed shards stay finished until the stream stops listing them.
func (c *Consumer) Run(ctx context.Context) error {
	log.Printf("[Stream] Consuming %s", c.streamARN)

	defer func() {
		c.mu.Lock()
		for _, cancel := range c.active {
			cancel()
		}
		c.mu.Unlock()
	}()

	for {
		shards, err := c.listShards(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Stream] Failed to list shards: %v", err)
		}
		c.prune(shards)
		for _, shardID := range shards {
			c.spawn(ctx, shardID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.refresh):
		}
	}
}

func (c *Consumer) listShards(ctx context.Context) ([]string, error) {
	var (
		shardIDs []string
		lastID   *string
	)
	for {
		out, err := c.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
			StreamArn:             aws.String(c.streamARN),
			ExclusiveStartShardId: lastID,
		})
		if err != nil {
			return nil, err
		}
		if out.StreamDescription == nil {
			return shardIDs, nil
		}
		for _, shard := range out.StreamDescription.Shards {
			shardIDs = append(shardIDs, aws.ToString(shard.ShardId))
		}
		lastID = out.StreamDescription.LastEvaluatedShardId
		if lastID == nil {
			return shardIDs, nil
		}
	}
}

// spawn starts a reader for the shard unless one is running or the shard was
// already read to its end. A reader that fails removes itself from the active
// set, so the next describe pass reopens the shard from the trim horizon.
func (c *Consumer) spawn(ctx context.Context, shardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, running := c.active[shardID]; running {
		return
	}
	if _, finished := c.done[shardID]; finished {
		return
	}

	shardCtx, cancel := context.WithCancel(ctx)
	c.active[shardID] = cancel
	go func() {
		err := c.consumeShard(shardCtx, shardID)
		cancel()

		c.mu.Lock()
		delete(c.active, shardID)
		if err == nil && ctx.Err() == nil {
			c.done[shardID] = struct{}{}
		}
		c.mu.Unlock()
	}()
}

// prune forgets finished shards the stream no longer lists, so the done set
// does not grow without bound as shards roll over.
func (c *Consumer) prune(current []string) {
	listed := make(map[string]struct{}, len(current))
	for _, shardID := range current {
		listed[shardID] = struct{}{}
	}

	c.mu.Lock()
	for shardID := range c.done {
		if _, ok := listed[shardID]; !ok {
			delete(c.done, shardID)
		}
	}
	c.mu.Unlock()
}

// consumeShard reads one shard to its end. A nil return means the shard closed
// or the context ended; an error means the reader gave up mid-shard and the
// shard should be reopened.
func (c *Consumer) consumeShard(ctx context.Context, shardID string) error {
	iterOut, err := c.streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
		StreamArn:         aws.String(c.streamARN),
		ShardId:           aws.String(shardID),
		ShardIteratorType: streamtypes.ShardIteratorTypeTrimHorizon,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("[Stream] Failed to get iterator for shard %s: %v", shardID, err)
		return err
	}

	iterator := iterOut.ShardIterator
	for iterator != nil {
		if ctx.Err() != nil {
			return nil
		}
		out, err := c.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
			ShardIterator: iterator,
			Limit:         aws.Int32(100),
		})
		if err != nil {
			var expired *streamtypes.ExpiredIteratorException
			if errors.As(err, &expired) {
				log.Printf("[Stream] Iterator expired for shard %s, rewinding to trim horizon", shardID)
				return c.consumeShard(ctx, shardID)
			}
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[Stream] Failed to read shard %s: %v", shardID, err)
			recordErrorsTotal.Inc()
			return err
		}

		c.dispatch(ctx, out.Records)
		iterator = out.NextShardIterator

		if len(out.Records) == 0 && iterator != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.pollDelay):
			}
		}
	}
	log.Printf("[Stream] Shard %s closed", shardID)
	return nil
}

// dispatch fans a batch out to the handler. Each record is an independent
// employee; a failed record never blocks its batch mates.
func (c *Consumer) dispatch(ctx context.Context, records []streamtypes.Record) {
	var tasks []async.Task
	for _, record := range records {
		if record.EventName != streamtypes.OperationTypeInsert {
			continue
		}
		ev, err := DecodeEvent(record)
		if err != nil {
			recordErrorsTotal.Inc()
			log.Printf("[Stream] Skipping undecodable record: %v", err)
			continue
		}
		recordsTotal.Inc()
		tasks = append(tasks, async.Task{
			Name: "record " + ev.ID,
			Func: func(ctx context.Context) error {
				if err := c.handler.Process(ctx, ev); err != nil {
					recordErrorsTotal.Inc()
					log.Printf("[Stream] %v", err)
				}
				return nil
			},
		})
	}
	if len(tasks) == 0 {
		return
	}
	// Task funcs swallow their own errors, so RunParallel only fails on a
	// cancelled context.
	if err := async.RunParallel(ctx, tasks); err != nil {
		log.Printf("[Stream] Batch aborted: %v", err)
	}
}
