// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retrieval selects the passages used to ground an answer.
//
// A Retriever asks an index for the k chunks closest to a question and
// returns them in descending similarity order. It applies no reranking or
// filtering of its own; k defaults to DefaultK.
//
// Example:
//
//	r, err := retrieval.NewRetriever(retrieval.WithK(6))
//	if err != nil {
//	    return err
//	}
//	passages, err := r.Retrieve(ctx, idx, "What color is the sky?")
package retrieval
