package receipt

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// ReceiptLength gives ~190 bits of entropy with the standard alphabet.
const ReceiptLength = 32

// NanoidGenerator issues receipts from crypto/rand through go-nanoid. The
// receipt carries nothing derivable from the requester or the clock.
type NanoidGenerator struct {
	next func() string
}

func NewNanoidGenerator() (*NanoidGenerator, error) {
	next, err := nanoid.Standard(ReceiptLength)
	if err != nil {
		return nil, fmt.Errorf("init receipt generator: %w", err)
	}
	return &NanoidGenerator{next: next}, nil
}

func (g *NanoidGenerator) NewReceipt() (string, error) {
	return g.next(), nil
}
