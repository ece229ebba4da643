package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"golang.org/x/term"

	"github.com/stolasapp/wicket/internal/config"
	"github.com/stolasapp/wicket/internal/storage"
)

type configKey struct{}

// prompt writes msg to stderr when stdin is a terminal and reads one line of
// input, without echo if mask is set.
func prompt(msg string, mask bool) ([]byte, error) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		if _, err := os.Stderr.WriteString(msg); err != nil {
			return nil, err
		}
	}
	if mask && interactive {
		line, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = os.Stderr.WriteString("\n")
		return line, err
	}
	return readLine(os.Stdin)
}

// readLine reads a single line from r one byte at a time, so nothing past the
// line is consumed. Adapted from term.readPasswordLine.
func readLine(r io.Reader) ([]byte, error) {
	var buf [1]byte
	var ret []byte

	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				if runtime.GOOS != "windows" {
					return ret, nil
				}
			case '\r':
				if runtime.GOOS == "windows" {
					return ret, nil
				}
			default:
				ret = append(ret, buf[0]) //nolint:gosec // erroneous error
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}

// loadConfig returns the config resolved by the root command along with the
// default logger and an opened store. Callers own closing the store.
func loadConfig(ctx context.Context) (*config.Config, *slog.Logger, *storage.DB, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, nil, nil, errors.New("config file resolution failed")
	}
	logger := slog.Default()
	store, err := storage.NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, store, nil
}
