package main

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestServe_StopsOnContextCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServe_ReportsListenFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1"}
	if err := serve(context.Background(), srv, time.Second); err == nil {
		t.Fatalf("expected listen error")
	}
}
