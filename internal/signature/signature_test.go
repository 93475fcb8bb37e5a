package signature

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got := Sign([]byte("what do ya want for nothing?"), "Jefe")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestVerifyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		body := make([]byte, rng.Intn(512))
		rng.Read(body)
		secret := randomSecret(rng)

		assert.True(t, Verify(body, Sign(body, secret), secret), "iteration %d", i)
	}
}

func TestVerify(t *testing.T) {
	body := []byte(`{"type":"charge:confirmed","data":{"id":"ord1","metadata":{}}}`)
	secret := "test-secret"
	valid := Sign(body, secret)

	testCases := []struct {
		name   string
		body   []byte
		header string
		secret string
		want   bool
	}{
		{name: "valid signature", body: body, header: valid, secret: secret, want: true},
		{name: "missing header", body: body, header: "", secret: secret, want: false},
		{name: "missing secret", body: body, header: valid, secret: "", want: false},
		{name: "both missing", body: body, header: "", secret: "", want: false},
		{name: "wrong secret", body: body, header: valid, secret: "other-secret", want: false},
		{name: "tampered body", body: append([]byte(" "), body...), header: valid, secret: secret, want: false},
		{name: "uppercase hex", body: body, header: strings.ToUpper(valid), secret: secret, want: false},
		{name: "truncated signature", body: body, header: valid[:len(valid)-2], secret: secret, want: false},
		{name: "extended signature", body: body, header: valid + "00", secret: secret, want: false},
		{name: "not hex", body: body, header: "invalid-signature", secret: secret, want: false},
		{name: "prefixed signature", body: body, header: "sha256=" + valid, secret: secret, want: false},
		{name: "empty body signed", body: nil, header: Sign(nil, secret), secret: secret, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Verify(tc.body, tc.header, tc.secret))
		})
	}
}

func TestVerifyRejectsEveryOtherSignature(t *testing.T) {
	body := []byte("payload")
	secret := "s3cret"
	valid := []byte(Sign(body, secret))

	// Flip one hex digit at every position.
	for i := range valid {
		forged := append([]byte(nil), valid...)
		if forged[i] == '0' {
			forged[i] = '1'
		} else {
			forged[i] = '0'
		}
		assert.False(t, Verify(body, string(forged), secret), "position %d", i)
	}
}

func randomSecret(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	n := 1 + rng.Intn(40)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
	}
	return sb.String()
}
