package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a signed webhook timestamp may be.
const DefaultSignatureTolerance = 5 * time.Minute

// signPayload computes the v1 signature over "<unix-ts>.<payload>".
func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignEventPayload builds a signature header for payload as the provider
// would. Used by tests and local webhook replay tooling.
func SignEventPayload(secret string, at time.Time, payload []byte) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, signPayload(secret, ts, payload))
}

// VerifyEvent checks the "t=<ts>,v1=<hex>" signature header against secret
// and unmarshals the payload. Every failure mode returns ErrSignature so the
// HTTP layer cannot act as a verification oracle.
func VerifyEvent(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) (*Event, error) {
	if secret == "" || sigHeader == "" {
		return nil, ErrSignature
	}

	var ts int64
	var sigs []string
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, ErrSignature
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return nil, ErrSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return nil, ErrSignature
		}
	}

	expected := signPayload(secret, ts, payload)
	valid := false
	for _, s := range sigs {
		if hmac.Equal([]byte(expected), []byte(s)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrSignature
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrSignature
	}
	return &ev, nil
}
