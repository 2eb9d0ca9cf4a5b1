package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTLSCert_InvalidPEM(t *testing.T) {
	_, err := ParseTLSCert([]byte("not a pem block"))
	assert.Error(t, err)
}

func TestParseTLSCert_EmptyInput(t *testing.T) {
	_, err := ParseTLSCert(nil)
	assert.Error(t, err)
}
