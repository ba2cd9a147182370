package bank

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed sample/demo.tex
var demoBank []byte

// Demo returns the small bank compiled into the binary, used when no bank
// file is configured.
func Demo() (*Bank, error) {
	questions, err := Parse(bytes.NewReader(demoBank))
	if err != nil {
		return nil, fmt.Errorf("parse demo bank: %w", err)
	}
	return New(questions), nil
}
