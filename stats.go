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
	"fmt"
	"time"
)

const mib = 1024 * 1024

// Stats describes the transfer of a query result.
//
// Stats never take part in comparing results.
type Stats struct {
	// Duration is the time from the metadata request to the completion of the last chunk.
	Duration time.Duration
	// RowCount is the number of rows reported by the server.
	RowCount int64
	// ByteCount is the number of CSV bytes downloaded.
	ByteCount int64
	// Chunks is the number of ranges the result was downloaded in.
	Chunks int
}

// DurationSeconds returns how long the query took in seconds.
func (s Stats) DurationSeconds() float64 {
	return s.Duration.Seconds()
}

// MiB returns the downloaded size in MiB.
func (s Stats) MiB() float64 {
	return float64(s.ByteCount) / mib
}

// MiBPerSecond returns how many MiB/s were downloaded and parsed.
func (s Stats) MiBPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.MiB() / s.Duration.Seconds()
}

// RowsPerSecondMillions returns how many millions of rows per second were parsed.
func (s Stats) RowsPerSecondMillions() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.RowCount) / s.Duration.Seconds() / 1e6
}

func (s Stats) String() string {
	return fmt.Sprintf("Duration: %.3fs\n"+
		"Millions of lines: %.3f\n"+
		"Millions of lines/s: %.3f\n"+
		"MiB: %.3f\n"+
		"MiB/s: %.3f",
		s.DurationSeconds(),
		float64(s.RowCount)/1e6,
		s.RowsPerSecondMillions(),
		s.MiB(),
		s.MiBPerSecond())
}
