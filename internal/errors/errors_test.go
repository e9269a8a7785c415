package errors_test

import (
	"errors"
	"net/http"
	"testing"

	nderrs "github.com/newsdeskhq/newsdesk/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := nderrs.E(
		"something went wrong",
		nderrs.Detail{Field: "sources.0", Error: "was bad"},
		http.StatusBadRequest,
	)
	want := &nderrs.Error{
		Err: errors.New("something went wrong"),
		Details: []nderrs.Detail{
			{Field: "sources.0", Error: "was bad"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("underneath")
	err := nderrs.E(sentinel, http.StatusNotFound)

	assert.True(t, errors.Is(err, sentinel))
}
