package providers

import (
	"cvewatch/internal/structures"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeFetch
	TypeMail
	TypeGet
	TypePost
)

var logFiles = map[TypeEnum]string{
	TypeApp:   "app.log",
	TypeFetch: "fetch.log",
	TypeMail:  "mail.log",
	TypeGet:   "get.log",
	TypePost:  "post.log",
}

func (t TypeEnum) String() string {
	switch t {
	case TypeFetch:
		return "fetch"
	case TypeMail:
		return "mail"
	case TypeGet:
		return "get"
	case TypePost:
		return "post"
	}
	return "app"
}

type Logger interface {
	Infof(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Errorf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	zerolog.TimeFieldFormat = time.RFC3339

	p := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logFiles))}
	for t, name := range logFiles {
		file, err := os.OpenFile(filepath.Join(conf.Logger.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		p.files = append(p.files, file)

		var out io.Writer = file
		if conf.Debug {
			out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})
		}
		p.loggers[t] = zerolog.New(out).Level(level).With().Timestamp().Str("type", t.String()).Logger()
	}
	return p, nil
}

func (p *LogProvider) get(t TypeEnum) *zerolog.Logger {
	l, ok := p.loggers[t]
	if !ok {
		l = p.loggers[TypeApp]
	}
	return &l
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	p.get(t).Info().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	p.get(t).Warn().Msgf(format, args...)
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	p.get(t).Error().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	p.get(t).Debug().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	p.get(t).Fatal().Msgf(format, args...)
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
	p.files = nil
}
