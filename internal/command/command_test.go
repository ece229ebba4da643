package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/wicket/internal/config"
)

func TestReadLine(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("line endings differ")
	}

	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{name: "single line", input: "hunter2\n", want: "hunter2"},
		{name: "stops at first line", input: "first\nsecond\n", want: "first"},
		{name: "backspace", input: "huntx\ber2\n", want: "hunter2"},
		{name: "carriage return ignored", input: "pw\r\n", want: "pw"},
		{name: "no trailing newline", input: "pw", want: "pw"},
		{name: "empty input", input: "", want: "", err: io.EOF},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := strings.NewReader(test.input)
			got, err := readLine(r)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, test.want, string(got))
		})
	}
}

func TestReadLine_LeavesRemainder(t *testing.T) {
	t.Parallel()

	r := strings.NewReader("first\nsecond\n")
	_, err := readLine(r)
	require.NoError(t, err)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(rest))
}

func TestRootCommand_SessionPrune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(dir, "db.sqlite")
	data, err := cfg.Marshal()
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "wicket.yaml")
	require.NoError(t, os.WriteFile(cfgPath, data, 0o600))

	cmd := RootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "session", "prune"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	_, err = os.Stat(cfg.DBFilepath)
	require.NoError(t, err, "database created on first use")
}
