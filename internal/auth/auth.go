// Package auth: login admin tunggal + token HS256 yang berlaku TokenTTL.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/nava-store/internal/domain"
)

const DefaultTokenTTL = 2 * time.Hour

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

type Option func(*Authenticator)

// WithClock dipakai test untuk menggeser waktu.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// New menerima hash bcrypt yang sudah jadi, atau password polos kalau hash kosong.
func New(email, password, passwordHash, secret string, opts ...Option) (*Authenticator, error) {
	if email == "" || secret == "" {
		return nil, errors.New("auth: email and secret are required")
	}
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, errors.New("auth: password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, "auth: hash password")
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, errors.Wrap(err, "auth: invalid password hash")
	}

	a := &Authenticator{
		email:        email,
		passwordHash: hash,
		secret:       []byte(secret),
		ttl:          DefaultTokenTTL,
		now:          time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Login mengembalikan token bertanda tangan. Kredensial salah -> ErrUnauthenticated.
func (a *Authenticator) Login(email, password string) (string, error) {
	if email != a.email {
		return "", errors.Wrap(domain.ErrUnauthenticated, "Email/Password salah")
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", errors.Wrap(domain.ErrUnauthenticated, "Email/Password salah")
	}

	now := a.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify: tanda tangan salah, algoritma lain, atau kadaluarsa -> ErrForbidden.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(domain.ErrForbidden, "Invalid Token")
	}
	// exp dicek manual supaya jam bisa diinjeksi
	if !claims.VerifyExpiresAt(a.now(), true) {
		return nil, errors.Wrap(domain.ErrForbidden, "Invalid Token")
	}
	return claims, nil
}

type ctxKey struct{}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// bearer mengambil bagian kedua header "Bearer <token>".
func bearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Middleware: token tidak ada -> 401, token invalid/kadaluarsa -> 403.
// onErr menulis response error (biasanya httpx.WriteError).
func (a *Authenticator) Middleware(onErr func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				onErr(w, r, errors.Wrap(domain.ErrUnauthenticated, "Unauthorized"))
				return
			}
			claims, err := a.Verify(token)
			if err != nil {
				onErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}
