package main

import (
	"fmt"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/bookstore/httpproxy"
	"github.com/certainbookstore/bookbench/internal/config"
)

const (
	modeLocal  = "local"
	modeRemote = "remote"
)

// store is the bookstore a run drives, either in-process or behind the HTTP proxy.
type store struct {
	bookstore.Service
	mode  string
	close func()
}

func (s *store) Close() {
	if s.close != nil {
		s.close()
	}
}

func newStore(cfg *config.Config, seed int64, propagate bool) (*store, error) {
	if cfg.Local {
		return &store{Service: bookstore.NewMemStore(seed), mode: modeLocal}, nil
	}

	client, err := httpproxy.New(cfg.ServerAddress,
		httpproxy.WithTimeout(cfg.Timeout),
		httpproxy.WithTracePropagation(propagate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bookstore client: %w", err)
	}
	return &store{Service: client, mode: modeRemote, close: client.Close}, nil
}
