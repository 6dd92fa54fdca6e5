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

package questdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanChunks(t *testing.T) {
	for rowCount := int64(0); rowCount <= 130; rowCount++ {
		for chunks := 1; chunks <= 120; chunks++ {
			ranges := planChunks(rowCount, chunks)

			expected := max(min(int64(chunks), rowCount), 1)
			require.Len(t, ranges, int(expected), "rows=%d chunks=%d", rowCount, chunks)
			require.Equal(t, int64(0), ranges[0].Start)
			require.Equal(t, rowCount, ranges[len(ranges)-1].End)

			base := rowCount / expected
			for i, r := range ranges {
				if i > 0 {
					require.Equal(t, ranges[i-1].End, r.Start)
				}
				if i < len(ranges)-1 {
					require.Equal(t, base, r.len())
				} else {
					require.GreaterOrEqual(t, r.len(), base)
				}
			}
		}
	}
}

func TestPlanChunksExamples(t *testing.T) {
	require.Equal(t, []rowRange{{0, 0}}, planChunks(0, 4))
	require.Equal(t, []rowRange{{0, 1}}, planChunks(1, 117))
	require.Equal(t, []rowRange{{0, 3}, {3, 6}, {6, 10}}, planChunks(10, 3))
	require.Equal(t, []rowRange{{0, 10}}, planChunks(10, 0))
}

func TestRowRangeLimit(t *testing.T) {
	require.Equal(t, "0,0", rowRange{}.limit())
	require.Equal(t, "3,6", rowRange{Start: 3, End: 6}.limit())
	require.Equal(t, int64(3), rowRange{Start: 3, End: 6}.len())
}
