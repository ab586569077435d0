package payments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signedPayload(t *testing.T, at time.Time) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(Event{ID: "evt_1", Type: EventCheckoutSessionCompleted, CreatedAt: at.Unix(), Data: json.RawMessage(`{"id":"cs_1"}`)})
	require.NoError(t, err)
	return payload, SignEventPayload(testSecret, at, payload)
}

func TestVerifyEventOK(t *testing.T) {
	now := time.Now()
	payload, header := signedPayload(t, now)

	ev, err := VerifyEvent(payload, header, testSecret, now, DefaultSignatureTolerance)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, ev.Type)
}

func TestVerifyEventRejections(t *testing.T) {
	now := time.Now()
	payload, header := signedPayload(t, now)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
		now     time.Time
	}{
		{name: "wrong secret", payload: payload, header: header, secret: "whsec_other", now: now},
		{name: "tampered payload", payload: append([]byte(`x`), payload...), header: header, secret: testSecret, now: now},
		{name: "empty header", payload: payload, header: "", secret: testSecret, now: now},
		{name: "empty secret", payload: payload, header: header, secret: "", now: now},
		{name: "garbage header", payload: payload, header: "t=abc,v1=zzz", secret: testSecret, now: now},
		{name: "stale timestamp", payload: payload, header: header, secret: testSecret, now: now.Add(DefaultSignatureTolerance + time.Minute)},
		{name: "future timestamp", payload: payload, header: header, secret: testSecret, now: now.Add(-DefaultSignatureTolerance - time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyEvent(tt.payload, tt.header, tt.secret, tt.now, DefaultSignatureTolerance)
			assert.ErrorIs(t, err, ErrSignature)
		})
	}
}

func TestVerifyEventMultipleSignatures(t *testing.T) {
	now := time.Now()
	payload, header := signedPayload(t, now)
	// Provider may send an old-key signature next to the valid one during
	// secret rotation.
	withStale := header + ",v1=deadbeef"

	ev, err := VerifyEvent(payload, withStale, testSecret, now, DefaultSignatureTolerance)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
}
