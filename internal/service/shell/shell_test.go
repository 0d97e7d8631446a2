package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAsk reads one trimmed line per prompt and renders the marker.
func TestAsk(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	s := New(strings.NewReader("  v1.0.0  \nrojo\n"), &out)
	ctx := context.Background()

	line, err := s.Ask(ctx, "Choose a version of RbxPI")
	require.NoError(t, err)
	require.Equal(t, "v1.0.0", line)
	require.Contains(t, out.String(), "Choose a version of RbxPI > ")

	line, err = s.Ask(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "rojo", line)
}

// TestAsk_ClosedInput treats a closed input stream as an interrupt.
func TestAsk_ClosedInput(t *testing.T) {
	t.Parallel()

	s := New(strings.NewReader(""), &bytes.Buffer{})

	_, err := s.Ask(context.Background(), "anything")
	require.ErrorIs(t, err, ErrInterrupted)
}

// TestAsk_Canceled aborts with ErrInterrupted when the context is done.
func TestAsk_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A blocked reader: no input ever arrives.
	blocked, _ := newBlockedReader()
	s := New(blocked, &bytes.Buffer{})

	_, err := s.Ask(ctx, "anything")
	require.ErrorIs(t, err, ErrInterrupted)
}

// newBlockedReader returns a reader whose Read never completes.
func newBlockedReader() (*blockedReader, chan struct{}) {
	ch := make(chan struct{})
	return &blockedReader{ch: ch}, ch
}

type blockedReader struct {
	ch chan struct{}
}

func (r *blockedReader) Read(_ []byte) (int, error) {
	<-r.ch
	return 0, nil
}

// TestConfirm accepts empty and "y" answers in any case, declining otherwise.
func TestConfirm(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"\n":    true,
		"y\n":   true,
		"Y\n":   true,
		"n\n":   false,
		"yes\n": false,
	}

	for input, want := range cases {
		s := New(strings.NewReader(input), &bytes.Buffer{})

		got, err := s.Confirm(context.Background(), "Do you want to install RbxPI v1.0.0?")
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", input)
	}
}
