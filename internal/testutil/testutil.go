package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"blackjack-helper/internal/game"
	"blackjack-helper/internal/metrics"
	"blackjack-helper/internal/vision"
)

// PNG returns a small valid PNG image.
func PNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Metrics registers on a private registry so tests can build many.
func Metrics() (*metrics.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.New(reg), reg
}

// FakeClassifier returns a canned classification and remembers the calls.
type FakeClassifier struct {
	mu     sync.Mutex
	Result *vision.Classification
	Err    error
	Keys   []string
	Images [][]byte

	// Started, if set, receives a value once a call is recorded.
	Started chan struct{}
	// Release, if set, holds every call until it is closed.
	Release chan struct{}
}

func (f *FakeClassifier) Classify(ctx context.Context, apiKey string, image []byte) (*vision.Classification, error) {
	f.mu.Lock()
	f.Keys = append(f.Keys, apiKey)
	f.Images = append(f.Images, image)
	res, err := f.Result, f.Err
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- struct{}{}
	}
	if f.Release != nil {
		select {
		case <-f.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *FakeClassifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Keys)
}

// Hand builds a hand from "rank/suit" pairs such as "A", "hearts".
func Hand(t *testing.T, pairs ...string) game.Hand {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("Hand needs rank/suit pairs, got %d tokens", len(pairs))
	}

	h := make(game.Hand, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		c, err := game.ParseCard(pairs[i], pairs[i+1])
		if err != nil {
			t.Fatalf("Bad card %s %s: %v", pairs[i], pairs[i+1], err)
		}
		h = append(h, c)
	}
	return h
}
