/*
 * Copyright 2024 QuestDB
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package itcases

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	questdb "github.com/questdb/questdb-query-go"
	"github.com/stretchr/testify/require"
)

const (
	stressRows    = 1000000
	stressWorkers = 8
)

func TestStressConcurrentQueries(t *testing.T) {
	tk := NewTestKit(t)
	ctx := context.Background()

	name := tk.RandomName()
	tk.NewTable(ctx, name, fmt.Sprintf(`
		CREATE TABLE %s (
			id LONG,
			message STRING,
			value DOUBLE,
			ts TIMESTAMP
		) TIMESTAMP(ts) PARTITION BY DAY
	`, name))
	tk.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s
		SELECT x, rnd_str(10, 40, 0), rnd_double(), timestamp_sequence(0, 1000)
		FROM long_sequence(%d)
	`, name, stressRows))

	c := questdb.NewClient(&questdb.Config{Endpoint: tk.Endpoint()})

	var (
		queries atomic.Int64
		rows    atomic.Int64
		wg      sync.WaitGroup
	)
	deadline := time.Now().Add(time.Minute)
	for i := 0; i < stressWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				limit := rand.Intn(stressRows) + 1
				q := c.Query(fmt.Sprintf("SELECT * FROM %s LIMIT %d", name, limit))
				q.Chunks = rand.Intn(16) + 1

				result, err := q.Execute(ctx)
				if !assertNoError(t, err) {
					return
				}
				if result.NumRows() != int64(limit) {
					t.Errorf("expected %d rows, got %d", limit, result.NumRows())
				}
				rows.Add(result.NumRows())
				queries.Add(1)
				result.Release()
			}
		}()
	}
	wg.Wait()

	require.Positive(t, queries.Load())
	t.Logf("Queried %d rows in %d queries", rows.Load(), queries.Load())
}

func assertNoError(t *testing.T, err error) bool {
	if err != nil {
		t.Errorf("query failed: %v", err)
		return false
	}
	return true
}
