package ycatlas

import (
	"context"
	"time"
)

// Chat asks a question about the directory and returns an answer grounded in
// retrieved companies. Filters narrow the retrieval scope.
func (c *Client) Chat(ctx context.Context, question string, f Filters) (a Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	in := struct {
		Question string  `json:"question"`
		Filters  Filters `json:"filters"`
	}{Question: question, Filters: f}

	err = c.post(ctx, "/api/chat", in, &a)
	return a, err
}
