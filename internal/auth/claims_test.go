package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func newTestCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, TTL: ttl})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec
}

func TestNewTokenCodec_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenCodec(TokenConfig{Secret: "too-short"})
	if !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("NewTokenCodec() error = %v, want ErrWeakSecret", err)
	}
}

func TestNewTokenCodec_DefaultTTL(t *testing.T) {
	codec := newTestCodec(t, 0)
	if codec.TTL() != 24*time.Hour {
		t.Errorf("TTL() = %v, want 24h", codec.TTL())
	}
}

func TestIssueAndParse(t *testing.T) {
	codec := newTestCodec(t, 2*time.Hour)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Issue("alice", issuedAt, 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token should have three segments, got %q", token)
	}

	claims, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 2*time.Hour {
		t.Errorf("expiresAt - issuedAt = %v, want 2h", got)
	}
	if !claims.IssuedAt.Time.Equal(issuedAt) {
		t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt.Time, issuedAt)
	}
	if claims.ID == "" {
		t.Error("token ID should not be empty")
	}
}

func TestIssue_ExplicitTTLOverridesDefault(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	issuedAt := time.Now()

	token, err := codec.Issue("bob", issuedAt, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 5*time.Minute {
		t.Errorf("expiresAt - issuedAt = %v, want 5m", got)
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	if _, err := codec.Issue("", time.Now(), 0); err == nil {
		t.Fatal("Issue() with empty subject should fail")
	}
}

func TestIsExpired_Boundary(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Issue("alice", issuedAt, 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	expiresAt := issuedAt.Add(time.Hour)
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at issue", issuedAt, false},
		{"just before expiry", expiresAt.Add(-time.Second), false},
		{"at expiry instant", expiresAt, false},
		{"after expiry", expiresAt.Add(time.Nanosecond), true},
		{"long after", expiresAt.Add(48 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(claims, tt.now); got != tt.want {
				t.Errorf("IsExpired(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsExpired_MissingExpiry(t *testing.T) {
	if !IsExpired(&Claims{}, time.Now()) {
		t.Error("claims without exp should be expired")
	}
	if !IsExpired(nil, time.Now()) {
		t.Error("nil claims should be expired")
	}
}

// alterChar swaps the character at i for a different base64url character.
func alterChar(s string, i int) string {
	replacement := byte('A')
	if s[i] == 'A' {
		replacement = 'B'
	}
	return s[:i] + string(replacement) + s[i+1:]
}

func TestParse_TamperedSegments(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	token, err := codec.Issue("alice", time.Now(), 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	segments := strings.Split(token, ".")
	offset := 0
	for idx, seg := range segments {
		for _, pos := range []int{0, len(seg) / 2, len(seg) - 1} {
			tampered := alterChar(token, offset+pos)
			_, err := codec.Parse(tampered)
			if err == nil {
				t.Errorf("segment %d position %d: tampered token parsed without error", idx, pos)
				continue
			}
			if !errors.Is(err, ErrTokenSignature) && !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("segment %d position %d: error = %v, want signature or malformed", idx, pos, err)
			}
		}
		offset += len(seg) + 1
	}
}

func TestParse_ForeignSecret(t *testing.T) {
	issuer, err := NewTokenCodec(TokenConfig{Secret: "another-secret-that-is-also-32-bytes-long!"})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	token, err := issuer.Issue("alice", time.Now(), 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = newTestCodec(t, 0).Parse(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("Parse() error = %v, want ErrTokenSignature", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	codec := newTestCodec(t, 0)
	for _, token := range []string{"", "not-a-valid-jwt", "a.b", "a.b.c"} {
		_, err := codec.Parse(token)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrTokenMalformed", token, err)
		}
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := newTestCodec(t, 0).Parse(token); err == nil {
		t.Fatal("Parse() should reject HS512 tokens")
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString(none) error = %v", err)
	}
	if _, err := newTestCodec(t, 0).Parse(none); err == nil {
		t.Fatal("Parse() should reject unsigned tokens")
	}
}

func TestParse_MissingSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := newTestCodec(t, 0).Parse(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Parse() error = %v, want ErrTokenMalformed", err)
	}
}

func TestInteroperability_StandardLibraryParsesIssuedToken(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	token, err := codec.Issue("alice", time.Now(), 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("jwt.ParseWithClaims() error = %v", err)
	}
	if sub, _ := parsed.Claims.GetSubject(); sub != "alice" {
		t.Errorf("subject = %q, want alice", sub)
	}
}

func TestInteroperability_CodecParsesStandardToken(t *testing.T) {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "bob",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	claims, err := newTestCodec(t, 0).Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "bob" {
		t.Errorf("Subject = %q, want bob", claims.Subject)
	}
}

func TestCodecs_UseIndependentKeys(t *testing.T) {
	a, err := NewTokenCodec(TokenConfig{Secret: strings.Repeat("a", 32)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTokenCodec(TokenConfig{Secret: strings.Repeat("b", 32)})
	if err != nil {
		t.Fatal(err)
	}

	token, err := a.Issue("alice", time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Parse(token); err != nil {
		t.Errorf("issuing codec should parse its own token: %v", err)
	}
	if _, err := b.Parse(token); err == nil {
		t.Error("codec with a different key should reject the token")
	}
}
