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

/*
Package questdb queries a QuestDB server over HTTP and materialises the result as an
Apache Arrow record.

# Endpoint

Use NewEndpoint to describe where the server lives and how to authenticate. Credentials are
validated when the endpoint is built, not when a request is sent:

	endpoint, err := questdb.NewEndpoint(questdb.EndpointConfig{
		Host:     "localhost",
		Username: "admin",
		Password: "quest",
	})

# Query Data

Create a Client, then a Query, and execute it. The result set is first sized with a metadata
request and then downloaded as Chunks concurrent CSV ranges, which are parsed against the
discovered schema and concatenated in row order:

	c := questdb.NewClient(&questdb.Config{Endpoint: endpoint})

	q := c.Query("SELECT * FROM trips")
	q.Chunks = 8
	result, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	defer result.Release()

	fmt.Println(result.Stats)
	columns := result.Columns()

Submit runs the same query in the background and returns a QueryHandle to wait on.
*/
package questdb
