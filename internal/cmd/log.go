package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel

	if len(level) != 0 {
		var err error

		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	writer := zerolog.ConsoleWriter{Out: w, NoColor: true}

	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
