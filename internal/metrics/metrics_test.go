package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"FullURL", "https://Lists.Example.COM/a.txt", "lists.example.com"},
		{"BareHost", "lists.example.com", "lists.example.com"},
		{"Invalid", "://not a url", "unknown"},
		{"Empty", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSite(tt.in))
		})
	}
}

func TestObserveBeforeInitIsSafe(t *testing.T) {
	// Collectors are nil until Init; observations must not panic.
	ObserveFetch("https://lists.example.com/a.txt", "ok", time.Second)
	ObserveRun("ok", 10, 1)

	Init()
	Init() // idempotent
	ObserveFetch("https://lists.example.com/a.txt", "ok", time.Second)
	ObserveRun("ok", 10, 1)
}
