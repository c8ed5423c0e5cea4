package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "plain number", input: "4\n", fallback: 0, want: 4},
		{name: "empty uses fallback", input: "\n", fallback: 3, want: 3},
		{name: "garbage is an error", input: "four\n", fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetInt(rdr(tc.input), "Score", tc.fallback, &out)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestGetFloat(t *testing.T) {
	var out bytes.Buffer

	got, err := GetFloat(rdr("51.5\n"), "Latitude", &out)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.InDelta(t, 51.5, *got, 1e-9)

	got, err = GetFloat(rdr("\n"), "Latitude", &out)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = GetFloat(rdr("north\n"), "Latitude", &out)
	require.Error(t, err)
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer

	ok, err := Confirm(rdr("yes\n"), "Danger ahead.", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, out.String(), "Danger ahead.")

	ok, err = Confirm(rdr("y\n"), "Danger ahead.", &out)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Confirm(rdr("YES\n"), "Danger ahead.", &out)
	require.NoError(t, err)
	require.False(t, ok)
}
