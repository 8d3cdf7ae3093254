package config

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger builds the run logger from the pipeline section.
func (r *Root) Logger(out io.Writer) (*logrus.Logger, error) {
	lvl := r.Pipeline.LogLvl
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline.log_level")
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch strings.ToLower(r.Pipeline.LogFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableLevelTruncation: true})
	default:
		return nil, errors.Errorf("unknown pipeline.log_format %q", r.Pipeline.LogFormat)
	}
	return log, nil
}
