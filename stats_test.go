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
	"time"

	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	stats := Stats{
		Duration:  2 * time.Second,
		RowCount:  3_000_000,
		ByteCount: 4 * mib,
		Chunks:    7,
	}
	require.Equal(t, 2.0, stats.DurationSeconds())
	require.Equal(t, 1.5, stats.RowsPerSecondMillions())
	require.Equal(t, 4.0, stats.MiB())
	require.Equal(t, 2.0, stats.MiBPerSecond())
	require.Equal(t, "Duration: 2.000s\n"+
		"Millions of lines: 3.000\n"+
		"Millions of lines/s: 1.500\n"+
		"MiB: 4.000\n"+
		"MiB/s: 2.000", stats.String())
}

func TestStatsZeroDuration(t *testing.T) {
	stats := Stats{RowCount: 10, ByteCount: 100}
	require.Zero(t, stats.RowsPerSecondMillions())
	require.Zero(t, stats.MiBPerSecond())
}
