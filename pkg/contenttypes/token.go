package contenttypes

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
)

// TokenGenerator is the generator name private-link keys reference.
const TokenGenerator = "token"

const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength   = 22
)

// TokenSource produces private-link keys.
type TokenSource interface {
	Token() (string, error)
}

// TokenSourceFunc adapts a function into a TokenSource.
type TokenSourceFunc func() (string, error)

// Token delegates to the underlying function.
func (fn TokenSourceFunc) Token() (string, error) {
	return fn()
}

// RandomTokens returns a TokenSource yielding lowercase base36 keys drawn
// from crypto/rand.
func RandomTokens() TokenSource {
	return TokenSourceFunc(randomToken)
}

// StaticTokens returns a TokenSource that always yields token.
func StaticTokens(token string) TokenSource {
	return TokenSourceFunc(func() (string, error) {
		return token, nil
	})
}

func randomToken() (string, error) {
	base := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, tokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("contenttypes: generate token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Generators returns the generators the embedded definitions reference,
// backed by source. A nil source uses RandomTokens.
func Generators(source TokenSource) model.Generators {
	if source == nil {
		source = RandomTokens()
	}
	return model.Generators{
		TokenGenerator: func() (value.Value, error) {
			token, err := source.Token()
			if err != nil {
				return value.Null(), err
			}
			return value.String(token), nil
		},
	}
}
