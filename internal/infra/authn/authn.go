package authn

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what handlers need from a session token.
type Claims struct {
	Subject string
	Email   string
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// OIDCVerifier checks session tokens issued by the hosted auth provider
// against its published JWKS.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuerURL, jwksURL string) *OIDCVerifier {
	if jwksURL == "" {
		jwksURL = strings.TrimRight(issuerURL, "/") + "/.well-known/jwks.json"
	}
	return newOIDCVerifier(issuerURL, oidc.NewRemoteKeySet(ctx, jwksURL))
}

func newOIDCVerifier(issuerURL string, keySet oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{
		// Session tokens carry no client audience.
		verifier: oidc.NewVerifier(issuerURL, keySet, &oidc.Config{SkipClientIDCheck: true}),
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	var extra struct {
		Email string `json:"email"`
	}
	if err := tok.Claims(&extra); err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if tok.Subject == "" {
		return nil, errors.Wrap(ErrInvalidToken, "token without subject")
	}
	return &Claims{Subject: tok.Subject, Email: extra.Email}, nil
}

// HMACVerifier accepts HS256 tokens signed with a shared secret. Used for
// local development and tests.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, errors.Wrap(ErrInvalidToken, "JWT secret not configured")
	}

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Wrap(ErrInvalidToken, "hmac token rejected")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(ErrInvalidToken, "invalid token claims")
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.Wrap(ErrInvalidToken, "token without subject")
	}
	email, _ := claims["email"].(string)
	return &Claims{Subject: sub, Email: email}, nil
}

// SignHMAC issues a development token for sub.
func SignHMAC(secret, sub, email string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
