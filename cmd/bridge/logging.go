package bridge

import (
	"fmt"
	"io"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// consoleEncoder masks control characters. Token names and symbols come from
// foreign chains and end up in log lines.
type consoleEncoder struct {
	zapcore.Encoder
}

func (e consoleEncoder) Clone() zapcore.Encoder {
	return consoleEncoder{e.Encoder.Clone()}
}

func (e consoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}

	b := buf.Bytes()
	for i := range b {
		if unicode.IsControl(rune(b[i])) && !unicode.IsSpace(rune(b[i])) {
			b[i] = '\x1A' // Substitute character
		}
	}

	return buf, nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	enc := consoleEncoder{zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)).Named("tokenbridge"), nil
}
