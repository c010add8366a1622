package qstash

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries the delivery signature on incoming webhooks.
const SignatureHeader = "Upstash-Signature"

// signatureIssuer is the iss claim QStash sets on delivery signatures.
const signatureIssuer = "Upstash"

// Receiver verifies that an incoming webhook delivery was signed by QStash.
// The signature is an HS256 JWT carried in the Upstash-Signature header.
// Keys come from GetSigningKeys or the Upstash console; keeping both keys
// configured lets deliveries verify across a rotation.
type Receiver struct {
	CurrentSigningKey string
	NextSigningKey    string

	// Tolerance extends the validity window of every verification to absorb
	// clock skew. VerifyOptions.Tolerance overrides it per call.
	Tolerance time.Duration
}

// VerifyOptions describes one delivery to verify.
type VerifyOptions struct {
	// Signature is the value of the Upstash-Signature header. Required.
	Signature string

	// Body is the raw request body as received.
	Body []byte

	// URL is the public URL the delivery was addressed to. When set, it is
	// checked against the signature's subject. Leave empty behind proxies
	// that rewrite the URL.
	URL string

	// Tolerance extends the validity window to absorb clock skew.
	// Zero falls back to the receiver's Tolerance.
	Tolerance time.Duration
}

// Verify checks the signature against the current key, then the next key.
// Verification failures wrap ErrInvalidSignature.
func (r *Receiver) Verify(opts VerifyOptions) error {
	if opts.Signature == "" {
		return fmt.Errorf("%w: signature is empty", ErrInvalidSignature)
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = r.Tolerance
	}

	keys := make([]string, 0, 2)
	if r.CurrentSigningKey != "" {
		keys = append(keys, r.CurrentSigningKey)
	}
	if r.NextSigningKey != "" {
		keys = append(keys, r.NextSigningKey)
	}
	if len(keys) == 0 {
		return fmt.Errorf("qstash: no signing keys configured")
	}

	var err error
	for _, key := range keys {
		if err = verifyWithKey(key, opts); err == nil {
			return nil
		}
	}
	return err
}

func verifyWithKey(key string, opts VerifyOptions) error {
	token, err := jwt.Parse(opts.Signature,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(key), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(opts.Tolerance),
	)
	if err != nil {
		return fmt.Errorf("%w: parse token: %v", ErrInvalidSignature, err)
	}
	if !token.Valid {
		return fmt.Errorf("%w: token is not valid", ErrInvalidSignature)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: unexpected claims type", ErrInvalidSignature)
	}

	if iss, ok := claims["iss"].(string); !ok || iss != signatureIssuer {
		return fmt.Errorf("%w: invalid issuer", ErrInvalidSignature)
	}

	if opts.URL != "" {
		if sub, ok := claims["sub"].(string); !ok || sub != opts.URL {
			return fmt.Errorf("%w: URL does not match signature subject", ErrInvalidSignature)
		}
	}

	bodyClaim, ok := claims["body"].(string)
	if !ok {
		return fmt.Errorf("%w: missing body claim", ErrInvalidSignature)
	}
	sum := sha256.Sum256(opts.Body)
	want := base64.RawURLEncoding.EncodeToString(sum[:])
	got := strings.TrimRight(bodyClaim, "=")
	if !hmac.Equal([]byte(got), []byte(want)) {
		return fmt.Errorf("%w: body hash mismatch", ErrInvalidSignature)
	}

	return nil
}

// Middleware wraps next with signature verification. Requests without a valid
// signature are rejected with 401 before reaching the handler; the body stays
// readable for the handler. The subject URL is not checked, since a server
// behind a proxy cannot reliably reconstruct its public URL.
func (r *Receiver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sig := req.Header.Get(SignatureHeader)
		if sig == "" {
			http.Error(w, "missing Upstash-Signature header", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))

		if err := r.Verify(VerifyOptions{Signature: sig, Body: body}); err != nil {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, req)
	})
}
