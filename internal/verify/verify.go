package verify

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"go.uber.org/zap"
)

var (
	ErrEmptyKeyring     = errors.New("keyring has no public keys")
	ErrInvalidSignature = errors.New("signature does not match document")
)

// Verifier checks armored detached OpenPGP signatures of fetched documents.
type Verifier struct {
	keyring openpgp.EntityList
	logger  *zap.Logger
}

func NewVerifier(armoredKeyring io.Reader, logger *zap.Logger) (*Verifier, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(armoredKeyring)
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}

	if len(keyring) == 0 {
		return nil, ErrEmptyKeyring
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	v := &Verifier{
		keyring: keyring,
		logger:  logger,
	}
	logger.Debug("loaded keyring", zap.Strings("keyIDs", v.KeyIDs()))
	return v, nil
}

func (v *Verifier) KeyIDs() []string {
	ids := make([]string, 0, len(v.keyring))
	for _, e := range v.keyring {
		ids = append(ids, e.PrimaryKey.KeyIdString())
	}
	return ids
}

// Verify checks sig against doc and returns the key ID of the signer.
func (v *Verifier) Verify(doc, sig []byte) (string, error) {
	signer, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(doc), bytes.NewReader(sig), nil)
	if err != nil {
		v.logger.Error("failed to verify signature", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	keyID := signer.PrimaryKey.KeyIdString()
	v.logger.Info("verified document signature", zap.String("keyID", keyID))
	return keyID, nil
}
