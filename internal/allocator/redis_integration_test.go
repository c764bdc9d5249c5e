//go:build integration

package allocator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"chronoledger/internal/allocator"
	"chronoledger/pkg/testutil/containers"
)

type RedisAllocatorSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisAllocatorSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisAllocatorSuite))
}

func (s *RedisAllocatorSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisAllocatorSuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisAllocatorSuite) TestSequentialIDs() {
	a := allocator.NewRedis(s.redis.Client)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		got, err := a.Next(ctx)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *RedisAllocatorSuite) TestReplicasShareSequence() {
	ctx := context.Background()
	first := allocator.NewRedis(s.redis.Client, allocator.WithKey("ledger:test"))
	second := allocator.NewRedis(s.redis.Client, allocator.WithKey("ledger:test"))

	a, err := first.Next(ctx)
	s.Require().NoError(err)
	b, err := second.Next(ctx)
	s.Require().NoError(err)
	s.Equal(a+1, b)
}

func (s *RedisAllocatorSuite) TestConcurrentUniqueness() {
	a := allocator.NewRedis(s.redis.Client)
	ctx := context.Background()

	const n = 200
	var mu sync.Mutex
	seen := make(map[uint64]struct{}, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.Next(ctx)
			s.NoError(err)
			mu.Lock()
			seen[v] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	s.Len(seen, n)
}
