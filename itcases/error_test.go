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
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	questdb "github.com/questdb/questdb-query-go"
	"github.com/stretchr/testify/require"
)

func TestQueryMissingTable(t *testing.T) {
	tk := NewTestKit(t)
	ctx := context.Background()

	_, err := questdb.Execute(ctx, tk.Endpoint(), fmt.Sprintf("SELECT * FROM %s", tk.RandomName()), 1)
	require.Error(t, err)

	var qe *questdb.QueryError
	require.ErrorAs(t, err, &qe)
	require.NotNil(t, qe.Position)
	require.Equal(t, 14, *qe.Position)
}

func TestQuerySyntaxError(t *testing.T) {
	tk := NewTestKit(t)
	ctx := context.Background()

	_, err := questdb.Execute(ctx, tk.Endpoint(), "SELECT UNKNOWN_FUNCTION()", 1)
	require.Error(t, err)
	snaps.MatchSnapshot(t, err.Error())
}
