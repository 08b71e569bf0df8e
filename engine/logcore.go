package engine

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// overlayCore is a zapcore.Core that hands each formatted entry to a sink
// Lines carry level, message and fields, no timestamps
type overlayCore struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	sink func(string)
}

func newOverlayCore(level zapcore.LevelEnabler, sink func(string)) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
	return &overlayCore{LevelEnabler: level, enc: enc, sink: sink}
}

func (c *overlayCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &overlayCore{LevelEnabler: c.LevelEnabler, enc: enc, sink: c.sink}
}

func (c *overlayCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *overlayCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(buf.String(), "\n")
	buf.Free()
	c.sink(line)
	return nil
}

func (c *overlayCore) Sync() error { return nil }
