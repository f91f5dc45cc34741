// Package logging builds the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"net"
	"os"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to out at the given level. When
// logstashAddr is set, entries are also shipped to logstash over TCP; the
// returned closer releases that connection.
func New(out io.Writer, level, logstashAddr string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	logger.SetLevel(lvl)

	if logstashAddr == "" {
		return logger, nopCloser{}, nil
	}

	conn, err := net.Dial("tcp", logstashAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: dial logstash %s: %w", logstashAddr, err)
	}
	logger.Hooks.Add(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "yatube-api"})))
	return logger, conn, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
