package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens at the claims level.
type TokenType string

// Token types carried in the token_type claim.
const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// PurposePasswordReset scopes a token to the password reset flow. Reset
// tokens are signed as access tokens; consumers must check the purpose
// claim, not the token type.
const PurposePasswordReset = "password_reset"

// Claim names used by the codec.
const (
	claimSubject   = "sub"
	claimRole      = "role"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
	claimTokenType = "token_type"
	claimPurpose   = "purpose"
	claimTokenID   = "jti"
)

// Claims is the payload signed inside a token.
type Claims map[string]any

// Subject returns the principal ID carried in the sub claim, if present
// and numeric.
func (c Claims) Subject() (int64, bool) {
	raw, ok := c[claimSubject].(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// TokenType returns the token_type claim.
func (c Claims) TokenType() TokenType {
	raw, _ := c[claimTokenType].(string)
	return TokenType(raw)
}

// Purpose returns the purpose claim.
func (c Claims) Purpose() string {
	raw, _ := c[claimPurpose].(string)
	return raw
}

// SubjectRole implements Subject over raw claims. Unknown or missing
// roles report false.
func (c Claims) SubjectRole() (Role, bool) {
	raw, ok := c[claimRole].(string)
	if !ok {
		return "", false
	}
	return ParseRole(raw)
}

func (c Claims) expiresAt() (time.Time, bool) {
	switch v := c[claimExpiresAt].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case jwt.NumericDate:
		return v.Time, true
	case *jwt.NumericDate:
		return v.Time, true
	default:
		return time.Time{}, false
	}
}

// CodecConfig carries the signing key and per-type default lifetimes.
type CodecConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
	Clock      func() time.Time
}

// Codec signs and verifies token claims with a single process-wide
// symmetric key. Changing the key invalidates all outstanding tokens.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewCodec constructs a Codec, applying default lifetimes where the
// config leaves them zero.
func NewCodec(cfg CodecConfig) *Codec {
	c := &Codec{
		key:        []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
		now:        cfg.Clock,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = 15 * time.Minute
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = 30 * 24 * time.Hour
	}
	if c.resetTTL <= 0 {
		c.resetTTL = 30 * time.Minute
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Encode signs the claims as a token of the given type. A zero ttl uses
// the configured default for the type. Issued-at, expiry, token type and
// a token ID are always injected.
func (c *Codec) Encode(claims Claims, typ TokenType, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		switch typ {
		case TokenRefresh:
			ttl = c.refreshTTL
		default:
			ttl = c.accessTTL
		}
	}

	now := c.now()
	payload := make(jwt.MapClaims, len(claims)+4)
	for k, v := range claims {
		payload[k] = v
	}
	payload[claimIssuedAt] = now.Unix()
	payload[claimExpiresAt] = now.Add(ttl).Unix()
	payload[claimTokenType] = string(typ)
	payload[claimTokenID] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", ErrInvalidToken
	}
	return signed, nil
}

// Decode parses a token. With verification on, signature and expiry are
// both enforced and any failure is ErrInvalidToken. With verification
// off the claims are returned as-is; the caller owns the expiry check
// via IsExpired. The unverified path exists for debugging only.
func (c *Codec) Decode(raw string, verify bool) (Claims, error) {
	if !verify {
		parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
		if err != nil {
			return nil, ErrInvalidToken
		}
		return toClaims(parsed.Claims)
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.key, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return toClaims(parsed.Claims)
}

// IsExpired compares the exp claim against the current time. A missing
// or unreadable exp claim counts as expired.
func (c *Codec) IsExpired(claims Claims) bool {
	exp, ok := claims.expiresAt()
	if !ok {
		return true
	}
	return c.now().After(exp)
}

// IssueAccess mints an access token for the principal, caching its role
// at issuance time.
func (c *Codec) IssueAccess(subject int64, role Role) (string, error) {
	return c.Encode(Claims{
		claimSubject: strconv.FormatInt(subject, 10),
		claimRole:    string(role),
	}, TokenAccess, 0)
}

// IssueRefresh mints a refresh token for the principal.
func (c *Codec) IssueRefresh(subject int64, role Role) (string, error) {
	return c.Encode(Claims{
		claimSubject: strconv.FormatInt(subject, 10),
		claimRole:    string(role),
	}, TokenRefresh, 0)
}

// IssuePasswordReset mints a short-lived token scoped to the password
// reset flow via the purpose claim.
func (c *Codec) IssuePasswordReset(subject int64) (string, error) {
	return c.Encode(Claims{
		claimSubject: strconv.FormatInt(subject, 10),
		claimPurpose: PurposePasswordReset,
	}, TokenAccess, c.resetTTL)
}

func toClaims(raw jwt.Claims) (Claims, error) {
	mapped, ok := raw.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	claims := make(Claims, len(mapped))
	for k, v := range mapped {
		claims[k] = v
	}
	return claims, nil
}
